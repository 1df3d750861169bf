package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cross_bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	signals chan models.Signal
}

func newStubEngine() *stubEngine {
	return &stubEngine{signals: make(chan models.Signal, 1)}
}

func (s *stubEngine) OnSignal(sig models.Signal) (models.Outcome, error) {
	s.signals <- sig
	return models.OutcomeNoAction, nil
}

func (s *stubEngine) received(t *testing.T) models.Signal {
	t.Helper()
	select {
	case sig := <-s.signals:
		return sig
	case <-time.After(time.Second):
		t.Fatal("engine never received the signal")
		return models.Signal{}
	}
}

func postSignal(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidSignalIsDispatched(t *testing.T) {
	engine := newStubEngine()
	router := New(engine).Router()

	w := postSignal(router, `{"time":"15m","base":"SOL","quote":"USDT","crossType":"BULL"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	sig := engine.received(t)
	assert.Equal(t, "SOLUSDT", sig.Pair.Symbol())
	assert.Equal(t, models.DirectionBull, sig.Direction)
	assert.Equal(t, "15m", sig.Interval)
}

func TestBearSignalIsDispatched(t *testing.T) {
	engine := newStubEngine()
	router := New(engine).Router()

	w := postSignal(router, `{"time":"1h","base":"BTC","quote":"USDT","crossType":"BEAR"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	sig := engine.received(t)
	assert.Equal(t, models.DirectionBear, sig.Direction)
}

func TestMissingFieldIsRejected(t *testing.T) {
	engine := newStubEngine()
	router := New(engine).Router()

	w := postSignal(router, `{"time":"15m","base":"SOL","crossType":"BULL"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	select {
	case <-engine.signals:
		t.Fatal("rejected request must not reach the engine")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnknownCrossTypeIsRejected(t *testing.T) {
	engine := newStubEngine()
	router := New(engine).Router()

	w := postSignal(router, `{"time":"15m","base":"SOL","quote":"USDT","crossType":"SIDEWAYS"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	select {
	case <-engine.signals:
		t.Fatal("rejected request must not reach the engine")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMalformedBodyIsRejected(t *testing.T) {
	engine := newStubEngine()
	router := New(engine).Router()

	w := postSignal(router, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	router := New(newStubEngine()).Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
