package web

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"

	"nanosheet/internal/model"
	"nanosheet/internal/sheet"
)

type regenerateRequest struct {
	NumLanes     int   `json:"numCols"`
	CardsPerLane []int `json:"cardsPerCol"`
}

// handleRegenerate clears a sheet and reseeds it with fresh random cards,
// one variable-length run per lane starting at the frozen slot.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	sheetID := r.PathValue("sheetID")

	req := regenerateRequest{NumLanes: 8}
	if r.ContentLength > 0 && !readJSON(w, r, &req) {
		return
	}
	if req.NumLanes <= 0 {
		http.Error(w, "numCols must be positive", http.StatusBadRequest)
		return
	}
	perLane := req.CardsPerLane
	if len(perLane) == 0 {
		perLane = make([]int, req.NumLanes)
		for i := range perLane {
			perLane[i] = 3 + rand.Intn(18)
		}
	}
	if len(perLane) != req.NumLanes {
		http.Error(w, "cardsPerCol length must match numCols", http.StatusBadRequest)
		return
	}

	total := 0
	maxRows := 0
	for _, n := range perLane {
		if n < 0 {
			http.Error(w, "cardsPerCol entries must be non-negative", http.StatusBadRequest)
			return
		}
		total += n
		if n > maxRows {
			maxRows = n
		}
	}

	cards := make([]model.Card, total)
	for i := range cards {
		cards[i] = newRandomCard("", "", "")
		if err := s.db.SaveCard(r.Context(), cards[i]); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	room := s.hub.Room(sheetID)
	sh := room.Sheet
	sh.Reset()

	lanes := make([]string, req.NumLanes)
	for i := range lanes {
		lanes[i] = fmt.Sprintf("c-%d", i)
		sh.LaneAxis().Push(lanes[i])
	}
	times := make([]string, maxRows)
	for i := range times {
		times[i] = sheet.NewTimeID()
		sh.TimeAxis().Push(times[i])
	}

	next := 0
	for laneIdx, laneID := range lanes {
		for rowIdx := 0; rowIdx < perLane[laneIdx] && next < total; rowIdx++ {
			c := cards[next]
			next++
			sh.SetCell(times[rowIdx], laneID, c.ID)
			sh.PutCard(c)
		}
	}
	room.FlushSnapshot()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"sheetId":       sheetID,
		"rows":          maxRows,
		"cols":          req.NumLanes,
		"cards_per_col": perLane,
		"total_cards":   total,
	})
}

type laneDownloadRequest struct {
	LaneTitle string       `json:"laneTitle"`
	Cards     []model.Card `json:"cards"`
}

// handleLaneDownload bundles the lane's card metadata into a zip archive,
// one numbered JSON file per card in timeline order.
func (s *Server) handleLaneDownload(w http.ResponseWriter, r *http.Request) {
	var req laneDownloadRequest
	if !readJSON(w, r, &req) {
		return
	}
	title := req.LaneTitle
	if title == "" {
		title = "lane"
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, c := range req.Cards {
		name := fmt.Sprintf("%02d-%s.json", i+1, archiveName(c.Title))
		f, err := zw.Create(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := f.Write(append(data, '\n')); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if err := zw.Close(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", archiveName(title)+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// archiveName keeps file names inside the archive portable.
func archiveName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "card"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "card"
	}
	return b.String()
}
