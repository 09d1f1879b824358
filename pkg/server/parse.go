package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
)

type parseReq struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Script []domain.Utterance `json:"script"`
}

// POST /api/parse
func (s *Server) handlePostParse(c echo.Context) error {
	var req parseReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return c.JSON(http.StatusOK, parseResponse{Script: []domain.Utterance{}})
	}

	utterances := s.TaggedParser().Parse(req.Text)
	if utterances == nil {
		utterances = []domain.Utterance{}
	}
	return c.JSON(http.StatusOK, parseResponse{Script: utterances})
}
