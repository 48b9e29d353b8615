package web

import (
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"nanosheet/internal/model"
)

// paletteEntry pairs a display name with its hex color; cards created
// without explicit styling draw both from one entry so name and color
// match.
type paletteEntry struct {
	Name  string
	Color string
}

var palette = []paletteEntry{
	{"Green", "#6BCB77"},
	{"Gold", "#FFD93D"},
	{"Red", "#FF6B6B"},
	{"Blue", "#4D96FF"},
	{"Purple", "#845EC2"},
	{"Pink", "#FF6BA8"},
	{"Orange", "#FF9A56"},
	{"Teal", "#4ECDC4"},
	{"Indigo", "#6A5ACD"},
	{"Coral", "#FF7F7F"},
	{"Lime", "#A8E6CF"},
	{"Amber", "#FFB347"},
	{"Cyan", "#00D9FF"},
	{"Magenta", "#D946EF"},
	{"Mint", "#98D8C8"},
	{"Peach", "#FFB88C"},
}

var loremSentences = []string{
	"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
	"Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
	"Ut enim ad minim veniam, quis nostrud exercitation ullamco.",
	"Duis aute irure dolor in reprehenderit in voluptate velit.",
	"Excepteur sint occaecat cupidatat non proident sunt in culpa.",
	"Vivamus sagittis lacus vel augue laoreet rutrum faucibus.",
	"Pellentesque habitant morbi tristique senectus et netus.",
	"Mauris blandit aliquet elit, eget tincidunt nibh pulvinar.",
	"Vestibulum ante ipsum primis in faucibus orci luctus.",
	"Curabitur non nulla sit amet nisl tempus convallis quis.",
	"Donec sollicitudin molestie malesuada proin eget tortor.",
	"Nulla porttitor accumsan tincidunt cras ultricies ligula.",
	"Praesent sapien massa, convallis a pellentesque nec egestas.",
	"Quisque velit nisi, pretium ut lacinia in elementum.",
	"Cras ultricies ligula sed magna dictum porta curabitur.",
}

// newRandomCard mints a card, filling any blank field from the palette and
// lorem pools the way the original service did.
func newRandomCard(title, color, prompt string) model.Card {
	style := palette[rand.Intn(len(palette))]
	if title == "" && color == "" {
		title = style.Name
		color = style.Color
	} else {
		if title == "" {
			title = style.Name
		}
		if color == "" {
			color = style.Color
		}
	}
	if prompt == "" {
		prompt = loremSentences[rand.Intn(len(loremSentences))]
	}
	return model.Card{
		ID:        uuid.NewString(),
		Title:     title,
		Color:     color,
		Prompt:    prompt,
		Number:    1 + rand.Intn(99),
		CreatedAt: time.Now().UTC(),
	}
}

type createCardRequest struct {
	Title  string `json:"title"`
	Color  string `json:"color"`
	Prompt string `json:"prompt"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if r.ContentLength > 0 && !readJSON(w, r, &req) {
		return
	}
	card := newRandomCard(strings.TrimSpace(req.Title), strings.TrimSpace(req.Color), req.Prompt)
	if err := s.db.SaveCard(r.Context(), card); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type updateCardRequest struct {
	Title  *string `json:"title"`
	Color  *string `json:"color"`
	Prompt *string `json:"prompt"`

	MediaURL  *string `json:"mediaUrl"`
	ThumbURL  *string `json:"thumbUrl"`
	MediaType *string `json:"mediaType"`
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("id")
	card, ok, err := s.db.GetCard(r.Context(), cardID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "card not found: "+cardID, http.StatusNotFound)
		return
	}

	var req updateCardRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Title != nil {
		card.Title = *req.Title
	}
	if req.Color != nil {
		card.Color = *req.Color
	}
	if req.Prompt != nil {
		card.Prompt = *req.Prompt
	}
	if req.MediaURL != nil {
		card.MediaURL = *req.MediaURL
	}
	if req.ThumbURL != nil {
		card.ThumbURL = *req.ThumbURL
	}
	if req.MediaType != nil {
		card.MediaType = model.MediaType(*req.MediaType)
	}

	if err := s.db.SaveCard(r.Context(), card); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type batchCardsRequest struct {
	CardIDs []string `json:"cardIds"`
}

func (s *Server) handleBatchCards(w http.ResponseWriter, r *http.Request) {
	var req batchCardsRequest
	if !readJSON(w, r, &req) {
		return
	}
	cards, err := s.db.GetCards(r.Context(), req.CardIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleGetShots(w http.ResponseWriter, r *http.Request) {
	titles, err := s.db.LaneTitles(r.Context(), r.PathValue("sheetID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

type updateShotRequest struct {
	SheetID string `json:"sheetId"`
	ShotID  string `json:"shotId"`
	Title   string `json:"title"`
}

func (s *Server) handleUpdateShot(w http.ResponseWriter, r *http.Request) {
	var req updateShotRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := s.db.SaveLaneTitle(r.Context(), req.SheetID, req.ShotID, req.Title); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success", "shotId": req.ShotID, "title": req.Title,
	})
}
