// Package server exposes the interpreter and the job store over HTTP.
package server

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"strconv"
	"strings"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mastercactapus/gcinterp/gcode"
	"github.com/mastercactapus/gcinterp/history"
	"github.com/mastercactapus/gcinterp/job"
	"github.com/mastercactapus/gcinterp/report"
	"github.com/mastercactapus/gcinterp/vm"
)

const (
	// ResultsChannel carries one JSON report.Entry per interpreted job line.
	ResultsChannel = "/events/results"

	// JobsChannel carries a Summary after each job run.
	JobsChannel = "/events/jobs"
)

// Config configures a Server.
type Config struct {
	Options vm.Options
	Store   *job.Store

	// History is optional.
	History *history.DB
}

type Server struct {
	http.Handler

	opt   vm.Options
	store *job.Store
	hist  *history.DB

	sse      *sse.Server
	upgrader websocket.Upgrader
}

// Summary is the JSON form of a job.Summary.
type Summary struct {
	Job        string         `json:"job,omitempty"`
	Lines      int            `json:"lines"`
	Outcomes   map[string]int `json:"outcomes"`
	Final      vm.State       `json:"final"`
	DurationMS float64        `json:"durationMS"`
	Error      string         `json:"error,omitempty"`
}

func newSummary(name string, s *job.Summary, err error) Summary {
	sum := Summary{
		Job:        name,
		Lines:      s.Lines,
		Outcomes:   s.Counts(),
		Final:      s.Final,
		DurationMS: s.Duration().Seconds() * 1000,
	}
	if err != nil {
		sum.Error = err.Error()
	}
	return sum
}

type runResponse struct {
	Summary Summary        `json:"summary"`
	Results []report.Entry `json:"results"`
}

func New(cfg Config) *Server {
	r := mux.NewRouter()

	s := &Server{
		Handler: r,
		opt:     cfg.Options,
		store:   cfg.Store,
		hist:    cfg.History,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(ioutil.Discard, "", 0),
		}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	r.HandleFunc("/api/run", s.run).Methods("POST")
	r.HandleFunc("/api/jobs", s.listJobs).Methods("GET")
	r.HandleFunc("/api/jobs/{name:.+}/run", s.runJob).Methods("POST")
	r.HandleFunc("/api/history", s.listHistory).Methods("GET")

	r.HandleFunc("/data/{name:.+}", s.getFile).Methods("GET")
	r.HandleFunc("/data/{name:.+}", s.putFile).Methods("PUT")
	r.HandleFunc("/data/{name:.+}", s.deleteFile).Methods("DELETE")

	r.HandleFunc("/ws", s.console)
	r.PathPrefix("/events/").Handler(s.sse)

	return s
}

// Close disconnects all event stream clients.
func (s *Server) Close() {
	s.sse.Shutdown()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Println("ERROR: encode:", err)
	}
}

func (s *Server) storeError(w http.ResponseWriter, name string, err error) {
	switch err {
	case job.ErrNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	case job.ErrInvalidPath:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("ERROR: job '%s': %+v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) publish(channel string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.sse.SendMessage(channel, sse.SimpleMessage(string(data)))
	return nil
}

// run interprets the request body in a fresh session.
func (s *Server) run(w http.ResponseWriter, req *http.Request) {
	var col report.Collector
	m := vm.NewMachine(s.opt)

	sum, err := job.Run(req.Context(), gcode.NewParser(req.Body), m, &col)
	if err != nil {
		log.Printf("ERROR: run: %+v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, runResponse{
		Summary: newSummary("", sum, nil),
		Results: col.Entries,
	})
}

func (s *Server) listJobs(w http.ResponseWriter, req *http.Request) {
	names, err := s.store.List()
	if err != nil {
		s.storeError(w, "", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

// runJob interprets a stored job, streaming results to event clients.
func (s *Server) runJob(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	rc, err := s.store.Open(name)
	if err != nil {
		s.storeError(w, name, err)
		return
	}
	defer rc.Close()

	m := vm.NewMachine(s.opt)
	pub := report.ReporterFunc(func(r vm.Result) error {
		return s.publish(ResultsChannel, report.NewEntry(r))
	})

	sum, runErr := job.Run(req.Context(), gcode.NewParser(rc), m, pub)
	if runErr != nil {
		log.Printf("ERROR: run job '%s': %+v", name, runErr)
	}

	if s.hist != nil {
		_, err = s.hist.Add(req.Context(), history.NewEntry(name, sum, runErr))
		if err != nil {
			log.Printf("ERROR: record run '%s': %+v", name, err)
		}
	}

	res := newSummary(name, sum, runErr)
	err = s.publish(JobsChannel, res)
	if err != nil {
		log.Println("ERROR: publish:", err)
	}

	if runErr != nil {
		http.Error(w, runErr.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, res)
}

func (s *Server) listHistory(w http.ResponseWriter, req *http.Request) {
	if s.hist == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}

	limit := 20
	if v := req.FormValue("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.hist.List(req.Context(), limit)
	if err != nil {
		log.Printf("ERROR: list history: %+v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, entries)
}

func (s *Server) getFile(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	rc, err := s.store.Open(name)
	if err != nil {
		s.storeError(w, name, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err = io.Copy(w, rc)
	if err != nil {
		log.Printf("ERROR: read '%s': %+v", name, err)
	}
}

func (s *Server) putFile(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	err := s.store.Put(name, req.Body)
	if err != nil {
		s.storeError(w, name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteFile(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	err := s.store.Delete(name)
	if err != nil {
		s.storeError(w, name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// console runs an interactive session over a websocket. Each text
// message is one or more lines; every line is answered with a report.Entry.
func (s *Server) console(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Println("ERROR: upgrade:", err)
		return
	}
	defer conn.Close()

	m := vm.NewMachine(s.opt)
	var n int
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("ERROR: read:", err)
			}
			return
		}

		for _, line := range strings.Split(strings.TrimRight(string(data), "\r\n"), "\n") {
			n++
			res := m.Exec(gcode.StripComment(line))
			res.Line = n
			err = conn.WriteJSON(report.NewEntry(res))
			if err != nil {
				log.Println("ERROR: write:", err)
				return
			}
		}
	}
}
