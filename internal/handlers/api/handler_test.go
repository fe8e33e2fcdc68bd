package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
	"github.com/tavernkeep/gamemaster/internal/handlers/api"
	"github.com/tavernkeep/gamemaster/internal/services/combat"
	"github.com/tavernkeep/gamemaster/internal/services/narrative"
)

type stubCombatService struct {
	got    *combat.ActionInput
	result *combat.ActionResult
	err    error
}

func (s *stubCombatService) ResolveAction(_ context.Context, input *combat.ActionInput) (*combat.ActionResult, error) {
	s.got = input
	return s.result, s.err
}

type stubNarrativeService struct {
	got       *narrative.TurnInput
	streamRaw string
	result    *narrative.TurnResult
	err       error
}

func (s *stubNarrativeService) RunTurn(_ context.Context, input *narrative.TurnInput, stream io.Writer) (*narrative.TurnResult, error) {
	s.got = input
	if s.err != nil {
		return nil, s.err
	}
	_, _ = stream.Write([]byte(s.streamRaw))
	return s.result, nil
}

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(context.Context) error { return s.err }

func newServer(t *testing.T, combatSvc combat.Service, narrativeSvc narrative.Service, pinger api.Pinger) *httptest.Server {
	t.Helper()

	handler := api.NewHandler(&api.HandlerConfig{
		CombatService:    combatSvc,
		NarrativeService: narrativeSvc,
		Pinger:           pinger,
	})

	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestCombatActionSuccess(t *testing.T) {
	narration := "Steel flashes in the torchlight."
	combatSvc := &stubCombatService{
		result: &combat.ActionResult{
			Log: &entities.CombatLogEntry{
				ID:     "log-1",
				RoomID: "room-1",
				Round:  3,
				Actor:  "Aldric",
				Action: entities.ActionAttack,
				Target: "Goblin",
				Roll:   19,
				Damage: 8,
			},
			Narrative: narration,
			Timestamp: time.Now().UTC(),
		},
	}

	server := newServer(t, combatSvc, &stubNarrativeService{}, nil)

	resp := postJSON(t, server.URL+"/api/combat/action",
		`{"actionType":"attack","roomId":"room-1","actorId":"char-1","targetId":"npc-1"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success   bool                     `json:"success"`
		Log       *entities.CombatLogEntry `json:"log"`
		Narrative *string                  `json:"narrative"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.True(t, body.Success)
	assert.Equal(t, 8, body.Log.Damage)
	require.NotNil(t, body.Narrative)
	assert.Equal(t, narration, *body.Narrative)

	assert.Equal(t, entities.ActionAttack, combatSvc.got.Action)
	assert.Equal(t, "npc-1", combatSvc.got.TargetID)
}

func TestCombatActionNullNarrativeWhenEmpty(t *testing.T) {
	combatSvc := &stubCombatService{
		result: &combat.ActionResult{
			Log:       &entities.CombatLogEntry{ID: "log-1"},
			Timestamp: time.Now().UTC(),
		},
	}

	server := newServer(t, combatSvc, &stubNarrativeService{}, nil)

	resp := postJSON(t, server.URL+"/api/combat/action", `{"actionType":"dodge","roomId":"room-1","actorId":"char-1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"narrative":null`)
}

func TestCombatActionErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid argument", apperr.InvalidArgument("bad action"), http.StatusBadRequest},
		{"not found", apperr.NotFound("no such room"), http.StatusNotFound},
		{"rate limited", apperr.RateLimited("slow down"), http.StatusTooManyRequests},
		{"internal", apperr.Internal("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, &stubCombatService{err: tt.err}, &stubNarrativeService{}, nil)

			resp := postJSON(t, server.URL+"/api/combat/action", `{"actionType":"attack","roomId":"r","actorId":"a"}`)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestCombatActionRejectsMalformedBody(t *testing.T) {
	server := newServer(t, &stubCombatService{}, &stubNarrativeService{}, nil)

	resp := postJSON(t, server.URL+"/api/combat/action", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGMTurnStreamsResponse(t *testing.T) {
	narrativeSvc := &stubNarrativeService{
		streamRaw: "data: {\"choices\":[{\"delta\":{\"content\":\"hello\"}}]}\n\ndata: [DONE]\n\n",
		result:    &narrative.TurnResult{Narration: "hello"},
	}

	server := newServer(t, &stubCombatService{}, narrativeSvc, nil)

	resp := postJSON(t, server.URL+"/api/gm/turn",
		`{"roomId":"room-1","characterName":"Seraphine","messages":[{"role":"user","content":"I look around."}]}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "hello")
	assert.Contains(t, string(raw), "[DONE]")

	assert.Equal(t, "room-1", narrativeSvc.got.RoomID)
	assert.Equal(t, "Seraphine", narrativeSvc.got.CharacterName)
	require.Len(t, narrativeSvc.got.Messages, 1)
}

func TestGMTurnUpstreamErrorSurfacesDistinctly(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"rate limited", apperr.RateLimited("too many requests"), http.StatusTooManyRequests},
		{"quota exhausted", apperr.QuotaExhausted("out of credits"), http.StatusPaymentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, &stubCombatService{}, &stubNarrativeService{err: tt.err}, nil)

			resp := postJSON(t, server.URL+"/api/gm/turn", `{"roomId":"room-1"}`)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHealthz(t *testing.T) {
	t.Run("healthy store", func(t *testing.T) {
		server := newServer(t, &stubCombatService{}, &stubNarrativeService{}, &stubPinger{})

		resp, err := http.Get(server.URL + "/healthz")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unreachable store", func(t *testing.T) {
		server := newServer(t, &stubCombatService{}, &stubNarrativeService{}, &stubPinger{err: apperr.Internal("down")})

		resp, err := http.Get(server.URL + "/healthz")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body struct {
			Status string `json:"status"`
			Store  string `json:"store"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "degraded", body.Status)
	})
}
