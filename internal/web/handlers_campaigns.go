package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/reorganizer/internal/core"
	"github.com/JonMunkholm/reorganizer/internal/web/templates"
)

// maxCampaignBody bounds campaign JSON payloads.
const maxCampaignBody = 1 << 20

// campaignRequest is the writable part of a campaign.
type campaignRequest struct {
	Name                   string       `json:"name"`
	Description            string       `json:"description"`
	OutputFilenameTemplate string       `json:"outputFilenameTemplate"`
	Fields                 []core.Field `json:"fields"`
}

func (req campaignRequest) campaign() core.Campaign {
	return core.Campaign{
		Name:                   req.Name,
		Description:            req.Description,
		OutputFilenameTemplate: req.OutputFilenameTemplate,
		Fields:                 req.Fields,
	}
}

func decodeCampaign(w http.ResponseWriter, r *http.Request) (core.Campaign, error) {
	var req campaignRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCampaignBody))
	if err := dec.Decode(&req); err != nil {
		return core.Campaign{}, fmt.Errorf("%w: invalid request body: %v", core.ErrInvalidCampaign, err)
	}
	return req.campaign(), nil
}

// queryInt reads a non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

// handleListCampaigns returns a page of campaigns. Supports skip and limit.
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	campaigns, err := s.service.ListCampaigns(r.Context(), skip, limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if campaigns == nil {
		campaigns = []core.Campaign{}
	}

	writeJSON(w, http.StatusOK, campaigns)
}

// handleCreateCampaign creates a campaign from a JSON body.
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCampaign(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	created, err := s.service.CreateCampaign(ctx, c)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Location", "/api/campaigns/"+created.ID.String())
	writeJSON(w, http.StatusCreated, created)
}

// handleGetCampaign returns a single campaign.
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	c, err := s.service.GetCampaign(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// handleUpdateCampaign replaces a campaign's definition.
func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	c, err := decodeCampaign(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	updated, err := s.service.UpdateCampaign(ctx, id, c)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteCampaign deletes a campaign.
func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.DeleteCampaign(ctx, id); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "campaign deleted"})
}

// handleCampaignsPage renders the campaign overview.
func (s *Server) handleCampaignsPage(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.service.ListCampaigns(r.Context(), 0, core.DefaultListLimit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if isHTMX(r) {
		templates.CampaignList(campaigns).Render(r.Context(), w)
		return
	}
	templates.CampaignsPage(campaigns).Render(r.Context(), w)
}
