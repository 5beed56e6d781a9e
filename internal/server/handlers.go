package server

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"chartsync/internal/capping"
	"chartsync/internal/charts"
	"chartsync/internal/dashboard"
	"chartsync/internal/filters"
	"chartsync/internal/pages"
	"chartsync/internal/render"
)

// chartResponse is the JSON form of a chart view
type chartResponse struct {
	Anchor  string         `json:"anchor"`
	Kind    string         `json:"kind"`
	Group   string         `json:"group"`
	Title   string         `json:"title,omitempty"`
	Rows    []capping.Row  `json:"rows"`
	Filters []filters.Wire `json:"filters"`
	XDomain *charts.Domain `json:"x_domain,omitempty"`
	YDomain *charts.Domain `json:"y_domain,omitempty"`
	Brush   *filters.Wire  `json:"brush,omitempty"`
}

type filterRequest struct {
	Mode    dashboard.FilterMode `json:"mode"`
	Filters []filters.Wire       `json:"filters"`
}

type clickRequest struct {
	Key  any    `json:"key"`
	Axis string `json:"axis,omitempty"` // heat maps: "x" or "y" toggles a whole line
}

type brushRequest struct {
	Action dashboard.BrushAction `json:"action"`
	From   float64               `json:"from"`
	To     float64               `json:"to"`
}

type selectRequest struct {
	Keys []any `json:"keys"`
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"charts":    len(s.Dashboard.Anchors()),
		"pending":   s.Dashboard.Pending(),
	})
}

// HandleListCharts lists every chart with its active filters
func (s *Server) HandleListCharts(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.Dashboard.Summaries()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"title":  s.Dashboard.Layout().Title,
		"groups": s.Dashboard.Groups(),
		"charts": summaries,
	})
}

// HandleGetChart returns the rows and filters of one chart
func (s *Server) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	s.respondChart(w, r, r.PathValue("anchor"))
}

func (s *Server) respondChart(w http.ResponseWriter, r *http.Request, anchor string) {
	v, err := s.Dashboard.View(anchor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := newChartResponse(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func newChartResponse(v charts.View) (chartResponse, error) {
	wires, err := dashboard.Wires(v.Filters)
	if err != nil {
		return chartResponse{}, err
	}
	resp := chartResponse{
		Anchor:  v.Anchor,
		Kind:    v.Kind,
		Group:   v.Group,
		Title:   v.Title,
		Rows:    v.Rows,
		Filters: wires,
		XDomain: v.XDomain,
		YDomain: v.YDomain,
	}
	if resp.Rows == nil {
		resp.Rows = []capping.Row{}
	}
	if v.Brush != nil {
		w, err := filters.ToWire(*v.Brush)
		if err != nil {
			return chartResponse{}, err
		}
		resp.Brush = &w
	}
	return resp, nil
}

// HandleFilter toggles, replaces or resets a chart's filters
func (s *Server) HandleFilter(w http.ResponseWriter, r *http.Request) {
	anchor := r.PathValue("anchor")
	var req filterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	fs, err := filters.FromWires(req.Filters)
	if err != nil {
		s.writeError(w, r, badRequest{err})
		return
	}
	if err := s.Dashboard.Filter(anchor, req.Mode, fs...); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondChart(w, r, anchor)
}

// HandleClick clicks a row, or a heat map line when an axis is given
func (s *Server) HandleClick(w http.ResponseWriter, r *http.Request) {
	anchor := r.PathValue("anchor")
	var req clickRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	key := filters.Restore(req.Key)

	var err error
	if req.Axis != "" {
		err = s.Dashboard.ClickHeatMapLine(anchor, req.Axis, key)
	} else {
		err = s.Dashboard.Click(anchor, key)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondChart(w, r, anchor)
}

// HandleBrush drives one step of a brush gesture
func (s *Server) HandleBrush(w http.ResponseWriter, r *http.Request) {
	anchor := r.PathValue("anchor")
	var req brushRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Dashboard.Brush(anchor, req.Action, req.From, req.To); err != nil {
		s.writeError(w, r, err)
		return
	}

	state, extent, err := s.Dashboard.BrushState(anchor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := map[string]interface{}{"anchor": anchor, "state": state.String()}
	if extent != nil {
		if wire, err := filters.ToWire(*extent); err == nil {
			resp["extent"] = wire
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSelect sets a select menu's selection
func (s *Server) HandleSelect(w http.ResponseWriter, r *http.Request) {
	anchor := r.PathValue("anchor")
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	keys := make([]any, len(req.Keys))
	for i, k := range req.Keys {
		keys[i] = filters.Restore(k)
	}
	if err := s.Dashboard.Select(anchor, keys...); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondChart(w, r, anchor)
}

// HandleGroup runs filter-all, redraw, render or refocus on a chart group
func (s *Server) HandleGroup(w http.ResponseWriter, r *http.Request) {
	group, op := r.PathValue("group"), r.PathValue("op")

	var err error
	switch op {
	case "filter-all":
		err = s.Dashboard.FilterAllGroup(group)
	case "redraw":
		err = s.Dashboard.RedrawGroup(group)
	case "render":
		err = s.Dashboard.RenderGroup(group)
	case "refocus":
		err = s.Dashboard.RefocusGroup(group)
	default:
		s.writeError(w, r, badRequest{fmt.Errorf("unknown group operation %q", op)})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"group": group, "op": op, "status": "ok"})
}

// HandleListSnapshots lists stored filter snapshots
func (s *Server) HandleListSnapshots(w http.ResponseWriter, r *http.Request) {
	names, err := s.Dashboard.Snapshots(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": names, "count": len(names)})
}

// HandleSaveSnapshot stores the current filters under a name
func (s *Server) HandleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	snap, err := s.Dashboard.Save(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// HandleRestoreSnapshot restores a stored snapshot
func (s *Server) HandleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	snap, err := s.Dashboard.Load(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleChartFile serves the latest PNG or HTML output of a chart
func (s *Server) HandleChartFile(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	ext := path.Ext(file)
	anchor := strings.TrimSuffix(file, ext)

	if _, err := s.Dashboard.Chart(anchor); err != nil {
		s.writeError(w, r, err)
		return
	}

	var data []byte
	var ok bool
	switch {
	case ext == ".png" && s.Images != nil:
		data, ok = s.Images.Get(anchor)
	case ext == ".html" && s.Pages != nil:
		data, ok = s.Pages.Get(anchor)
	default:
		s.writeError(w, r, badRequest{fmt.Errorf("unsupported chart format %q", ext)})
		return
	}
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: %s has not been drawn", dashboard.ErrUnknownChart, file))
		return
	}

	w.Header().Set("Content-Type", GetContentType(file))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// HandleRoot serves the dashboard page
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.Dashboard.Summaries()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	layout := s.Dashboard.Layout()
	cards := make([]pages.Card, 0, len(summaries))
	for i, sum := range summaries {
		spec := layout.Charts[i]
		fs, _ := filters.FromWires(sum.Filters)
		title := sum.Title
		if title == "" {
			title = pages.TitleFromAnchor(sum.Anchor)
		}
		cards = append(cards, pages.Card{
			Anchor:  sum.Anchor,
			Title:   title,
			Kind:    sum.Kind,
			Group:   sum.Group,
			Width:   orDefault(spec.Width, charts.DefaultWidth),
			Height:  orDefault(spec.Height, charts.DefaultHeight),
			Filters: render.FilterSummary(fs),
		})
	}

	// snapshots are optional on the page
	snapshots, _ := s.Dashboard.Snapshots(r.Context())

	page, err := s.Builder.Build(layout, cards, snapshots)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
