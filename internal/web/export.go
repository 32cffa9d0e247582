package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"weekendplan/internal/export"
	"weekendplan/internal/ics"
	appLog "weekendplan/internal/log"
	"weekendplan/internal/model"
)

type shareResponse struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// handleExport renders the current plan in the format named by ?format=.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.store.CurrentPlan()
	if !ok {
		writeError(w, http.StatusConflict, "no current plan")
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "", "json":
		b, err := export.JSON(plan)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeDownload(w, "application/json; charset=utf-8", planFilename(plan, "json"), b)
	case "csv":
		writeDownload(w, "text/csv; charset=utf-8", planFilename(plan, "csv"), []byte(export.CSV(plan)))
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(export.Summary(plan, s.catalog)))
	case "ics":
		s.exportICS(w, r, plan)
	case "share":
		s.exportShare(w, r, plan)
	case "png":
		s.exportPNG(w, r, plan)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

func (s *Server) exportICS(w http.ResponseWriter, r *http.Request, plan model.WeekendPlan) {
	opts := ics.ExportOptions{Location: s.loc, Now: s.now}
	if v := r.URL.Query().Get("weekend"); v != "" {
		d, err := time.ParseInLocation(time.DateOnly, v, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "weekend must be YYYY-MM-DD")
			return
		}
		opts.Weekend = d
	}
	b, err := ics.Export(plan, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeDownload(w, "text/calendar; charset=utf-8", planFilename(plan, "ics"), b)
}

func (s *Server) exportShare(w http.ResponseWriter, r *http.Request, plan model.WeekendPlan) {
	base := s.cfg.ShareBaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host + "/"
	}
	link, err := export.ShareLink(base, plan)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	token, err := export.ShareToken(plan)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{URL: link, Token: token})
}

func (s *Server) exportPNG(w http.ResponseWriter, r *http.Request, plan model.WeekendPlan) {
	if s.capturer == nil {
		writeError(w, http.StatusNotImplemented, "image export is disabled")
		return
	}
	key := pngKey(plan)

	s.pngMu.RLock()
	cached := s.pngCache
	s.pngMu.RUnlock()
	if cached != nil && cached.key == key {
		appLog.Debug("png export served from cache", "plan_id", plan.ID)
		writeDownload(w, "image/png", planFilename(plan, "png"), cached.png)
		return
	}

	png, err := s.capturer.CapturePNG(r.Context(), s.printURL(plan.ID))
	if err != nil {
		appLog.Error("png export failed", err, "plan_id", plan.ID)
		writeError(w, http.StatusBadGateway, "capture failed")
		return
	}

	// The plan may have changed while the browser was rendering; only an
	// image of an unchanged plan is cached.
	if cur, ok := s.store.CurrentPlan(); ok && pngKey(cur) == key {
		s.pngMu.Lock()
		s.pngCache = &pngCache{key: key, png: png}
		s.pngMu.Unlock()
	}

	writeDownload(w, "image/png", planFilename(plan, "png"), png)
}

func pngKey(plan model.WeekendPlan) string {
	return plan.ID + "@" + plan.UpdatedAt.Format(time.RFC3339Nano)
}

func writeDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(body)
}

// planFilename slugs the plan name into a download filename.
func planFilename(plan model.WeekendPlan, ext string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plan.Name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "weekend-plan"
	}
	return slug + "." + ext
}

type weekendDates struct {
	Saturday string `json:"saturday"`
	Sunday   string `json:"sunday"`
}

// handleWeekends lists the next ?count= weekends (default 4) for picking an
// ics anchor.
func (s *Server) handleWeekends(w http.ResponseWriter, r *http.Request) {
	n := parseIntDefault(r.URL.Query().Get("count"), 4)
	sats, err := ics.UpcomingWeekends(s.now(), n, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := make([]weekendDates, 0, len(sats))
	for _, sat := range sats {
		out = append(out, weekendDates{
			Saturday: sat.Format(time.DateOnly),
			Sunday:   sat.AddDate(0, 0, 1).Format(time.DateOnly),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
