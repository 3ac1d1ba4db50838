package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/psdleague/psdl-bot/internal/match"
	"github.com/psdleague/psdl-bot/internal/pubsub"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := s.Players.ListAll()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(profiles); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// ListMatchesHandler returns the live state: the pregame and every
// ongoing match.
func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pregame, err := s.Matches.GetCurrentMatch()
		if err != nil {
			http.Error(w, "Failed to get current match", http.StatusInternalServerError)
			log.Error("Failed to get current match from store", "error", err)
			return
		}
		ongoing, err := s.Matches.GetOngoingMatches()
		if err != nil {
			http.Error(w, "Failed to get ongoing matches", http.StatusInternalServerError)
			log.Error("Failed to get ongoing matches from store", "error", err)
			return
		}
		resp := struct {
			Pregame *match.Pregame        `json:"pregame"`
			Ongoing []*match.OngoingMatch `json:"ongoing"`
		}{pregame, ongoing}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to encode matches to JSON", "error", err)
		}
	}
}

func (s *Server) ListOngoingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ongoing, err := s.Matches.GetOngoingMatches()
		if err != nil {
			http.Error(w, "Failed to get ongoing matches", http.StatusInternalServerError)
			log.Error("Failed to get ongoing matches from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ongoing); err != nil {
			log.Error("Failed to encode matches to JSON", "error", err)
		}
	}
}

// GetFinalizedHandler looks up one archival record by the matchID query
// parameter.
func (s *Server) GetFinalizedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}
		fm, err := s.Matches.GetFinalizedMatch(matchID)
		if err != nil {
			http.Error(w, "Failed to get match", http.StatusInternalServerError)
			log.Error("Failed to get finalized match from store", "error", err, "matchID", matchID)
			return
		}
		if fm == nil {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(fm); err != nil {
			log.Error("Failed to encode match to JSON", "error", err)
		}
	}
}

// pushEnvelope is the wrapper Google wraps around pushed pub/sub
// messages. The payload itself is base64-encoded MessagePack.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
}

// PubSubPushHandler is the single push sink: the event attribute selects
// the payload type and the notification to send.
func (s *Server) PubSubPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received pubsub push", "body", string(bodyBytes))

		var envelope pushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		isDryRun := isDryRunFromContext(r)
		event := pubsub.EventType(envelope.Message.Attributes["event"])
		switch event {
		case pubsub.EventNotifyChallenge:
			p := match.Pregame{}
			if err := s.pubsub.ProcessMessage(rawData, &p); err != nil {
				http.Error(w, "Invalid payload", http.StatusBadRequest)
				return
			}
			if err := s.Notifier.SendChallengeCreated(&p, isDryRun); err != nil {
				log.Error("Failed to notify challenge", "error", err, "captain1", p.Captain1)
				http.Error(w, "Failed to notify challenge", http.StatusInternalServerError)
				return
			}
		case pubsub.EventNotifyDraft:
			p := match.Pregame{}
			if err := s.pubsub.ProcessMessage(rawData, &p); err != nil {
				http.Error(w, "Invalid payload", http.StatusBadRequest)
				return
			}
			if err := s.Notifier.SendDraftStarted(&p, isDryRun); err != nil {
				log.Error("Failed to notify draft", "error", err, "captain1", p.Captain1)
				http.Error(w, "Failed to notify draft", http.StatusInternalServerError)
				return
			}
		case pubsub.EventNotifyTeams:
			m := match.OngoingMatch{}
			if err := s.pubsub.ProcessMessage(rawData, &m); err != nil {
				http.Error(w, "Invalid payload", http.StatusBadRequest)
				return
			}
			if err := s.Notifier.SendTeamsReady(&m, isDryRun); err != nil {
				log.Error("Failed to notify teams", "error", err, "matchID", m.ID)
				http.Error(w, "Failed to notify teams", http.StatusInternalServerError)
				return
			}
		case pubsub.EventNotifyResult:
			m := match.FinalizedMatch{}
			if err := s.pubsub.ProcessMessage(rawData, &m); err != nil {
				http.Error(w, "Invalid payload", http.StatusBadRequest)
				return
			}
			if err := s.Notifier.SendResultFinalized(&m, isDryRun); err != nil {
				log.Error("Failed to notify result", "error", err, "matchID", m.ID)
				http.Error(w, "Failed to notify result", http.StatusInternalServerError)
				return
			}
		default:
			log.Warn("Dropping pubsub push with unknown event", "event", event)
		}
		w.Write([]byte("OK"))
	}
}
