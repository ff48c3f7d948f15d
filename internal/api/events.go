package api

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/waterme/internal/projection"
)

type eventDTO struct {
	Insertions    []projection.IndexPath `json:"insertions,omitempty"`
	Deletions     []projection.IndexPath `json:"deletions,omitempty"`
	Modifications []projection.IndexPath `json:"modifications,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Sections      []sectionDTO           `json:"sections"`
}

func eventName(k projection.ChangeKind) string {
	switch k {
	case projection.Initial:
		return "initial"
	case projection.Update:
		return "update"
	default:
		return "error"
	}
}

// GET /api/events streams projection changes. Each event carries the diff
// and the resulting sections, so a client that missed one can resync.
func (s *Server) streamEvents(c *gin.Context) {
	ch := make(chan projection.Change, 16)
	tok := s.events.Subscribe(func(ev projection.Change) {
		select {
		case ch <- ev:
		default:
			s.log.Warn("event stream client is too slow, dropping change")
		}
	})
	defer tok.Invalidate()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("initial", eventDTO{Sections: s.sections()})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-ch:
			dto := eventDTO{
				Insertions:    ev.Insertions,
				Deletions:     ev.Deletions,
				Modifications: ev.Modifications,
				Sections:      s.sections(),
			}
			if ev.Err != nil {
				dto.Error = ev.Err.Error()
			}
			c.SSEvent(eventName(ev.Kind), dto)
			return true
		}
	})
}
