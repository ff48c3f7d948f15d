package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/waterme/internal/bucket"
	"github.com/julianstephens/waterme/internal/iconstore"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/notifications"
	"github.com/julianstephens/waterme/internal/projection"
	"github.com/julianstephens/waterme/internal/storage"
)

type rowDTO struct {
	ID           string     `json:"id"`
	VesselID     string     `json:"vessel_id"`
	VesselName   string     `json:"vessel_name"`
	Kind         string     `json:"kind"`
	IntervalDays int        `json:"interval_days"`
	Note         string     `json:"note,omitempty"`
	NextPerform  *time.Time `json:"next_perform_date,omitempty"`
}

type sectionDTO struct {
	Bucket string   `json:"bucket"`
	Rows   []rowDTO `json:"rows"`
}

// PerformRequest marks several reminders as done at once.
type PerformRequest struct {
	IDs []string   `json:"ids" binding:"required,min=1"`
	At  *time.Time `json:"at"`
}

func (s *Server) row(r models.Reminder) rowDTO {
	return rowDTO{
		ID:           r.ID,
		VesselID:     r.VesselID,
		VesselName:   s.col.VesselName(r.VesselID),
		Kind:         r.Kind.DisplayName(),
		IntervalDays: r.IntervalDays,
		Note:         r.Note,
		NextPerform:  r.NextPerformDate,
	}
}

func (s *Server) sections() []sectionDTO {
	out := make([]sectionDTO, 0, s.gedeg.NumberOfSections())
	for _, k := range bucket.All {
		sec := sectionDTO{Bucket: k.String(), Rows: []rowDTO{}}
		for row := 0; row < s.gedeg.NumberOfRows(k); row++ {
			r, ok := s.gedeg.Item(projection.IndexPath{Section: k, Row: row})
			if !ok {
				continue
			}
			sec.Rows = append(sec.Rows, s.row(r))
		}
		out = append(out, sec)
	}
	return out
}

// GET /api/sections
func (s *Server) getSections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": s.sections()})
}

// GET /api/reminders/:id
func (s *Server) getReminder(c *gin.Context) {
	id := c.Param("id")
	r, err := s.store.GetReminder(id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	resp := gin.H{"reminder": s.row(r), "enabled": r.IsEnabled, "performed": r.Performed}
	if p, ok := s.gedeg.RowIndex(id); ok {
		resp["section"] = p.Section.String()
		resp["row"] = p.Row
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/reminders/:id/perform
func (s *Server) performOne(c *gin.Context) {
	if err := s.store.AppendPerform([]string{c.Param("id")}, s.localNow()); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/perform
func (s *Server) performMany(c *gin.Context) {
	var req PerformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	at := s.localNow()
	if req.At != nil {
		at = *req.At
	}
	if err := s.store.AppendPerform(req.IDs, at); err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"performed": len(req.IDs)})
}

// GET /api/badge
func (s *Server) getBadge(c *gin.Context) {
	published, err := s.store.GetBadge()
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"badge": published,
		"due":   notifications.BadgeCount(s.col.Snapshot(), s.localNow()),
	})
}

type planDTO struct {
	notifications.PlanEntry
	Body string `json:"body,omitempty"`
}

// GET /api/plan previews the notifications the scheduler would queue now.
func (s *Server) getPlan(c *gin.Context) {
	settings, err := s.store.GetSettings()
	if err != nil {
		s.storeError(c, err)
		return
	}
	plan := notifications.BuildPlan(s.col.Snapshot(), s.col, notifications.ConfigFromSettings(settings), s.localNow(), nil)
	out := make([]planDTO, len(plan))
	for i, e := range plan {
		out[i] = planDTO{PlanEntry: e, Body: notifications.Body(e)}
	}
	c.JSON(http.StatusOK, gin.H{"enabled": settings.NotificationsEnabled, "plan": out})
}

// GET /api/vessels
func (s *Server) getVessels(c *gin.Context) {
	vessels, err := s.store.GetAllVessels()
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vessels": vessels})
}

// GET /api/vessels/:id/icon
func (s *Server) getIcon(c *gin.Context) {
	if s.icons == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "icons are not enabled"})
		return
	}
	data, contentType, err := s.icons.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, iconstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "icon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// PUT /api/vessels/:id/icon stores the request body as the vessel's image.
func (s *Server) putIcon(c *gin.Context) {
	if s.icons == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "icons are not enabled"})
		return
	}
	v, err := s.store.GetVessel(c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, iconstore.MaxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.icons.Put(v.ID, data); err != nil {
		switch {
		case errors.Is(err, iconstore.ErrImageTooBig):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.Is(err, iconstore.ErrNotAnImage):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	v.Icon = models.VesselIcon{Kind: models.IconImage}
	if err := s.store.UpdateVessel(v); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrLastReminder):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.log.Error("store request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
