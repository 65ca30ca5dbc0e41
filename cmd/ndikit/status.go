package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/kvasirlabs/ndikit/discovery"
	"github.com/kvasirlabs/ndikit/recv"
	"github.com/kvasirlabs/ndikit/send"
)

// status aggregates the live state the HTTPS endpoint reports. The mode
// loops publish into it; handler reads take a snapshot under the lock.
type status struct {
	mu       sync.RWMutex
	mode     string
	engine   string
	sources  []discovery.Source
	recvSess *recv.Session
	sendSess *send.Session
}

func (s *status) setSources(sources []discovery.Source) {
	s.mu.Lock()
	s.sources = sources
	s.mu.Unlock()
}

func (s *status) setReceive(r *recv.Session) {
	s.mu.Lock()
	s.recvSess = r
	s.mu.Unlock()
}

func (s *status) setSend(w *send.Session) {
	s.mu.Lock()
	s.sendSess = w
	s.mu.Unlock()
}

type statusReport struct {
	Mode    string         `json:"mode"`
	Engine  string         `json:"engine"`
	Sources []sourceReport `json:"sources"`
	Receive *receiveReport `json:"receive,omitempty"`
	Send    *sendReport    `json:"send,omitempty"`
}

type sourceReport struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type receiveReport struct {
	Source string     `json:"source"`
	State  string     `json:"state"`
	Stats  recv.Stats `json:"stats"`
}

type sendReport struct {
	Name  string     `json:"name"`
	Stats send.Stats `json:"stats"`
}

// handler serves the JSON status document at /api/status.
func (s *status) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		report := statusReport{
			Mode:    s.mode,
			Engine:  s.engine,
			Sources: make([]sourceReport, len(s.sources)),
		}
		for i, src := range s.sources {
			report.Sources[i] = sourceReport{Name: src.Name, Address: src.Address}
		}
		if s.recvSess != nil {
			report.Receive = &receiveReport{
				Source: s.recvSess.SourceName(),
				State:  s.recvSess.State().String(),
				Stats:  s.recvSess.Stats(),
			}
		}
		if s.sendSess != nil {
			report.Send = &sendReport{
				Name:  s.sendSess.Name(),
				Stats: s.sendSess.Stats(),
			}
		}
		s.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return mux
}
