package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"

	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
	"github.com/shouni/go-vn-stage/pkg/vnstage/render"
	"github.com/shouni/go-vn-stage/pkg/vnstage/script"
	"github.com/shouni/go-vn-stage/pkg/vnstage/timeline"
)

// SequenceResponse は1本のシーケンスです。
type SequenceResponse struct {
	Total        time.Duration      `json:"total"`
	TotalSeconds float64            `json:"total_seconds"`
	Segments     []timeline.Segment `json:"segments"`
	Entries      []render.Entry     `json:"entries"`
}

// TimelineResponse は POST /api/timeline の応答です。
type TimelineResponse struct {
	ID       string           `json:"id"`
	Social   SequenceResponse `json:"social"`
	Dialogue SequenceResponse `json:"dialogue"`
}

// ErrorResponse はエラー応答です。Index は発話に紐づく場合だけ設定されます。
type ErrorResponse struct {
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	Index       *int   `json:"index,omitempty"`
	CharacterID string `json:"character_id,omitempty"`
}

// POST /api/timeline
func (s *Server) handlePostTimeline(c echo.Context) error {
	doc, err := script.LoadJSON(c.Request().Body)
	if err != nil {
		var invalid *script.ErrInvalidDocument
		if errors.As(err, &invalid) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Kind: "invalid_document", Message: err.Error(), Index: lineIndex(invalid.Index)})
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	tl, err := s.Compositor.Compose(timeline.Input{
		Title:      doc.Title,
		Level:      doc.Level,
		Utterances: doc.Utterances(),
		Clips:      doc.Clips(),
		Vocab:      doc.Vocab,
		VocabClips: doc.VocabClips(),
	})
	if err != nil {
		if resp, ok := composeError(err); ok {
			c.Logger().Warnf("composition rejected: %v", err)
			return c.JSON(http.StatusUnprocessableEntity, resp)
		}
		c.Logger().Errorf("composition failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "composition failed")
	}

	return c.JSON(http.StatusOK, TimelineResponse{
		ID:       ksuid.New().String(),
		Social:   s.sequence(tl),
		Dialogue: s.sequence(tl.DialogueOnly()),
	})
}

func (s *Server) sequence(tl *timeline.Timeline) SequenceResponse {
	return SequenceResponse{
		Total:        tl.Total(),
		TotalSeconds: tl.Total().Seconds(),
		Segments:     tl.Segments,
		Entries:      s.Emitter.Emit(tl),
	}
}

// composeError はコアのエラーを 422 の応答に変換します。
func composeError(err error) (ErrorResponse, bool) {
	var (
		cfgErr     *domain.ErrConfig
		layoutErr  *domain.ErrLayout
		missingErr *domain.ErrMissingAudio
	)
	switch {
	case errors.As(err, &cfgErr):
		return ErrorResponse{Kind: "config", Message: err.Error(), Index: lineIndex(cfgErr.Index), CharacterID: cfgErr.CharacterID}, true
	case errors.As(err, &layoutErr):
		return ErrorResponse{Kind: "layout", Message: err.Error(), Index: lineIndex(layoutErr.Index), CharacterID: layoutErr.CharacterID}, true
	case errors.As(err, &missingErr):
		return ErrorResponse{Kind: "missing_audio", Message: err.Error(), Index: lineIndex(missingErr.Index), CharacterID: missingErr.Speaker}, true
	}
	return ErrorResponse{}, false
}

func lineIndex(i int) *int {
	if i < 0 {
		return nil
	}
	return &i
}
