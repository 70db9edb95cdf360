package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"restaurant_chat/src/model"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// readMessages validates the body and the provider credential. It writes
// the error response itself and returns ok=false on failure.
func (s *Server) readMessages(w http.ResponseWriter, r *http.Request) ([]model.Message, bool) {
	log := requestLog(r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, errBodyRequired)
		return nil, false
	}

	messages, invalid := parseChatRequest(body)
	if invalid != "" {
		log.Warn().Str("error", invalid).Msg("invalid chat request")
		writeError(w, http.StatusBadRequest, invalid)
		return nil, false
	}

	if !s.opts.LLM.HasCredential() {
		log.Error().Str("provider", s.opts.LLM.Provider).Msg("completion provider credential missing")
		writeError(w, http.StatusInternalServerError, s.opts.LLM.MissingCredentialError())
		return nil, false
	}

	return messages, true
}

// handleChat streams the assistant reply as plain text chunks
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	log := requestLog(r)
	log.Info().Msg("chat request received")

	messages, ok := s.readMessages(w, r)
	if !ok {
		return
	}

	turn, err := s.chat.Start(r.Context(), messages)
	if err != nil {
		log.Error().Err(err).Msg("error processing chat request")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer turn.Stream.Close()

	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if turn.Absorbed {
		log.Info().Str("conversation_id", turn.ConversationID).Msg("message merged into an earlier request")
		return
	}

	controller := http.NewResponseController(w)
	var full strings.Builder

	for {
		delta, err := turn.Stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error().Err(err).Str("conversation_id", turn.ConversationID).Msg("error during streaming")
			fmt.Fprintf(w, "\n\nError: %s", err.Error())
			controller.Flush()
			return
		}

		full.WriteString(delta)
		if _, err := io.WriteString(w, delta); err != nil {
			log.Warn().Err(err).Msg("client went away during streaming")
			return
		}
		controller.Flush()
	}

	text := full.String()
	turn.SaveResponse(text)

	preview := text
	if len([]rune(preview)) > 100 {
		preview = string([]rune(preview)[:100])
	}
	log.Info().
		Str("conversation_id", turn.ConversationID).
		Int("response_length", len(text)).
		Str("response_preview", preview).
		Msg("chat response completed")
}

// handleComplete answers in one JSON document, with the reply already
// divided into display parts.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	messages, ok := s.readMessages(w, r)
	if !ok {
		return
	}

	result, err := s.chat.Complete(r.Context(), messages)
	if err != nil {
		requestLog(r).Error().Err(err).Msg("error completing chat request")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, model.DataResponse{Success: true, Data: result})
}

func (s *Server) getMemory(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "conversationId")

	messages := s.chat.Memory().Read(key)
	if last := r.URL.Query().Get("last"); last != "" {
		n, err := strconv.Atoi(last)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "last must be a non-negative integer")
			return
		}
		messages = s.chat.Memory().Tail(key, n)
	}

	writeJSON(w, http.StatusOK, model.DataResponse{
		Success: true,
		Data: map[string]any{
			"conversationId": key,
			"messages":       messages,
		},
	})
}

func (s *Server) clearMemory(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "conversationId")
	s.chat.Memory().Clear(key)
	requestLog(r).Info().Str("conversation_id", key).Msg("conversation memory cleared")
	writeJSON(w, http.StatusOK, model.DataResponse{Success: true, Data: map[string]string{"conversationId": key}})
}
