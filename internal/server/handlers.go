package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/export"
	"github.com/kazi-app/ups/internal/feature"
	"github.com/kazi-app/ups/internal/integration"
)

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// health reruns the health check. Degraded providers answer 503 so load
// balancers can act on it.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	h := s.p.CheckHealth()
	status := http.StatusOK
	if !h.IsHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, h)
}

type featuresResponse struct {
	Enabled []string `json:"enabled"`
	Known   []string `json:"known"`
}

func (s *Server) listFeatures(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, featuresResponse{
		Enabled: s.p.Features().List(),
		Known:   feature.Known(),
	})
}

func (s *Server) enableFeature(w http.ResponseWriter, r *http.Request) {
	s.p.EnableFeature(r.Context(), chi.URLParam(r, "name"))
	s.listFeatures(w, r)
}

func (s *Server) disableFeature(w http.ResponseWriter, r *http.Request) {
	s.p.DisableFeature(r.Context(), chi.URLParam(r, "name"))
	s.listFeatures(w, r)
}

type publishRequest struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (s *Server) publishEvent(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.p.PublishCustom(r.Context(), req.Type, req.Data); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type broadcastRequest struct {
	Target string `json:"target"`
	Kind   string `json:"kind"`
	Data   any    `json:"data"`
}

func (s *Server) broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Kind == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "kind is required")
		return
	}
	if err := s.p.NotifyApp(r.Context(), req.Target, req.Kind, req.Data); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type commentRequest struct {
	Content    string           `json:"content"`
	Type       string           `json:"type"`
	Priority   string           `json:"priority"`
	Position   *domain.Position `json:"position"`
	Tags       []string         `json:"tags"`
	ParentID   string           `json:"parent_id"`
	AssignedTo string           `json:"assigned_to"`
}

// listComments returns the feed narrowed by query parameters. It does
// not touch the session filters.
func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.Filters{
		AuthorID:   q.Get("author"),
		AssignedTo: q.Get("assignee"),
		Tags:       q["tag"],
		Query:      q.Get("q"),
	}
	for _, v := range q["status"] {
		f.Status = append(f.Status, domain.CommentStatus(v))
	}
	for _, v := range q["priority"] {
		f.Priority = append(f.Priority, domain.Priority(v))
	}

	out := []domain.Comment{}
	for _, c := range s.p.Comments().List() {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.p.Comments().Add(r.Context(), integration.CommentInput{
		Content:    req.Content,
		Type:       domain.CommentType(req.Type),
		Priority:   domain.Priority(req.Priority),
		Position:   req.Position,
		Tags:       req.Tags,
		ParentID:   req.ParentID,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getComment(w http.ResponseWriter, r *http.Request) {
	c, ok := s.p.Comments().Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "comment not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type commentPatchRequest struct {
	Content  *string               `json:"content"`
	Priority *domain.Priority      `json:"priority"`
	Status   *domain.CommentStatus `json:"status"`
	Position *domain.Position      `json:"position"`
	Tags     []string              `json:"tags"`
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	var req commentPatchRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.p.Comments().Update(r.Context(), chi.URLParam(r, "id"), integration.CommentPatch(req))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.p.Comments().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resolveComment(w http.ResponseWriter, r *http.Request) {
	c, err := s.p.Comments().Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type suggestRequest struct {
	Instruction string `json:"instruction"`
}

func (s *Server) suggestReply(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	sug, err := s.p.AI().Suggest(r.Context(), chi.URLParam(r, "id"), req.Instruction)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sug)
}

func (s *Server) exportComments(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeErr(w, err)
		return
	}
	rec, data, err := s.p.Export().Comments(r.Context(), format)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Export-ID", rec.ID)
	_, _ = w.Write(data)
}

type notificationRequest struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
	ActionURL string `json:"action_url"`
}

type notificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

func (s *Server) listNotifications(w http.ResponseWriter, _ *http.Request) {
	v := s.p.Notifications()
	list := v.List()
	if list == nil {
		list = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Notifications: list, Unread: v.UnreadCount()})
}

func (s *Server) addNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := s.p.Notifications().Add(r.Context(), integration.NotificationInput{
		Type:      domain.NotificationType(req.Type),
		Title:     req.Title,
		Message:   req.Message,
		Priority:  domain.Priority(req.Priority),
		ActionURL: req.ActionURL,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	if err := s.p.Notifications().MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type markAllResponse struct {
	Marked int `json:"marked"`
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.p.Notifications().MarkAllRead(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, markAllResponse{Marked: n})
}

func (s *Server) clearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := s.p.Notifications().Clear(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
