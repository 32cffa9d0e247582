package export

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	appLog "weekendplan/internal/log"
	"weekendplan/internal/model"
)

// ShareParam is the query parameter that carries a share token.
const ShareParam = "shared"

// sharedPlan is the subset of a plan that travels in a share token.
type sharedPlan struct {
	ID       string                    `json:"id"`
	Name     string                    `json:"name"`
	Theme    model.Theme               `json:"theme"`
	Saturday []model.ScheduledActivity `json:"saturday"`
	Sunday   []model.ScheduledActivity `json:"sunday"`
}

// ShareToken encodes the plan's id, name, theme and day lists as base64
// JSON.
func ShareToken(plan model.WeekendPlan) (string, error) {
	b, err := json.Marshal(sharedPlan{
		ID:       plan.ID,
		Name:     plan.Name,
		Theme:    plan.Theme,
		Saturday: plan.Saturday,
		Sunday:   plan.Sunday,
	})
	if err != nil {
		return "", fmt.Errorf("export: share token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// ShareLink appends the plan's share token to baseURL.
func ShareLink(baseURL string, plan model.WeekendPlan) (string, error) {
	token, err := ShareToken(plan)
	if err != nil {
		return "", err
	}
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + ShareParam + "=" + url.QueryEscape(token), nil
}

// ParseSharedPlan decodes a share token, or a full share link, back into a
// plan skeleton. Timestamps are set to now and the mood journal starts
// empty. Anything that does not decode yields nil.
func ParseSharedPlan(shared string) *model.WeekendPlan {
	token := extractToken(strings.TrimSpace(shared))
	if token == "" {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		appLog.Warn("export: shared plan is not base64", "err", err)
		return nil
	}
	var sp sharedPlan
	if err := json.Unmarshal(raw, &sp); err != nil {
		appLog.Warn("export: shared plan is not valid json", "err", err)
		return nil
	}
	if sp.ID == "" && sp.Name == "" && len(sp.Saturday) == 0 && len(sp.Sunday) == 0 {
		return nil
	}

	now := time.Now()
	plan := model.WeekendPlan{
		ID:          sp.ID,
		Name:        sp.Name,
		Theme:       sp.Theme,
		Saturday:    sp.Saturday,
		Sunday:      sp.Sunday,
		CreatedAt:   now,
		UpdatedAt:   now,
		MoodJournal: []model.MoodEntry{},
	}
	if plan.Saturday == nil {
		plan.Saturday = []model.ScheduledActivity{}
	}
	if plan.Sunday == nil {
		plan.Sunday = []model.ScheduledActivity{}
	}
	return &plan
}

// extractToken pulls the token out of a share link. Anything that is not a
// link is taken as the token itself; query decoding turns '+' into ' ', so
// spaces are put back.
func extractToken(s string) string {
	query := ""
	switch {
	case strings.Contains(s, "?"):
		query = s[strings.Index(s, "?")+1:]
	case strings.HasPrefix(s, ShareParam+"="):
		query = s
	default:
		return strings.ReplaceAll(s, " ", "+")
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(values.Get(ShareParam), " ", "+")
}
