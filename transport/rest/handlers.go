package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleLeaderboard lists every entry, best first.
func (that *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleLeaderboard")

	entries, err := that.leaderboard.List(r.Context())
	if err != nil {
		log.Error("failed to list leaderboard", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		if entries[i].Losses != entries[j].Losses {
			return entries[i].Losses < entries[j].Losses
		}
		return entries[i].Name < entries[j].Name
	})

	that.writeJSON(w, http.StatusOK, entries)
}

func (that *Server) handleLeaderboardEntry(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleLeaderboardEntry")

	name := r.PathValue("name")

	entry, err := that.leaderboard.GetEntry(r.Context(), name)
	if errors.Is(err, apperror.ErrEntryNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "player not found"})
		return
	}

	if err != nil {
		log.Error("failed to get leaderboard entry", "name", name, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
		return
	}

	that.writeJSON(w, http.StatusOK, entry)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
