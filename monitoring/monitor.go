// Package monitoring serves the state of a running simulation over HTTP so
// that it can be watched while accesses are replayed.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sarchlab/dmcache/cache"
	"github.com/sarchlab/dmcache/hooking"
	"github.com/sarchlab/dmcache/monitoring/web"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// observedCache is what the monitor reads from the cache that invokes it.
type observedCache interface {
	Name() string
	Lines() []cache.Line
	Stats() cache.Stats
	DerivedMetrics() cache.Metrics
}

// minPortNumber is the lowest port the server may be assigned.
const minPortNumber = 1000

// Snapshot is a copy of the cache state taken after the latest access or
// reset.
type Snapshot struct {
	Name      string             `json:"name"`
	NumLines  int                `json:"num_lines"`
	Lines     []cache.Line       `json:"lines"`
	Stats     cache.Stats        `json:"stats"`
	Metrics   cache.Metrics      `json:"metrics"`
	LastEvent *cache.AccessEvent `json:"last_event,omitempty"`
}

// Monitor is a hook that keeps a snapshot of the cache it is attached to and
// serves it, together with progress bars and process resources, over HTTP.
// The snapshot is copied under a lock, so the HTTP handlers never touch the
// live cache.
type Monitor struct {
	portNumber int

	snapshotLock sync.Mutex
	snapshot     Snapshot

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < minPortNumber {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// Func refreshes the snapshot after an access or a reset.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	c, ok := ctx.Domain.(observedCache)
	if !ok {
		return
	}

	snapshot := Snapshot{
		Name:    c.Name(),
		Lines:   c.Lines(),
		Stats:   c.Stats(),
		Metrics: c.DerivedMetrics(),
	}
	snapshot.NumLines = len(snapshot.Lines)

	if event, isAccess := ctx.Item.(cache.AccessEvent); isAccess {
		snapshot.LastEvent = &event
	}

	m.snapshotLock.Lock()
	m.snapshot = snapshot
	m.snapshotLock.Unlock()
}

// Snapshot returns the latest snapshot.
func (m *Monitor) Snapshot() Snapshot {
	m.snapshotLock.Lock()
	defer m.snapshotLock.Unlock()

	s := m.snapshot
	s.Lines = append([]cache.Line(nil), m.snapshot.Lines...)

	return s
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the HTTP API of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/cache", m.serializeCache).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", m.listStats).Methods(http.MethodGet)
	r.HandleFunc("/api/lines", m.listLines).Methods(http.MethodGet)
	r.HandleFunc("/api/lines/{index}", m.lineDetail).Methods(http.MethodGet)
	r.HandleFunc("/api/progress", m.listProgressBars).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)

	r.PathPrefix("/").
		Handler(http.FileServer(web.GetAssets())).
		Methods(http.MethodGet)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", m.listenAddr())
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		serveErr := m.server.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Printf("monitoring server stopped: %v", serveErr)
		}
	}()

	return url, nil
}

// listenAddr returns the address to listen on. Port 0 picks a random port.
func (m *Monitor) listenAddr() string {
	if m.portNumber < minPortNumber {
		return ":0"
	}

	return ":" + strconv.Itoa(m.portNumber)
}

// Shutdown stops the web server, if it was started.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

// OpenInBrowser opens the monitor page in the default browser.
func OpenInBrowser(url string) error {
	return browser.OpenURL(url)
}

func (m *Monitor) serializeCache(w http.ResponseWriter, _ *http.Request) {
	snapshot := m.Snapshot()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(3)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

type eventRsp struct {
	Text      string `json:"text"`
	Hit       bool   `json:"hit"`
	Block     int    `json:"block"`
	LineIndex int    `json:"line_index"`
}

type statsRsp struct {
	Name      string        `json:"name"`
	NumLines  int           `json:"num_lines"`
	Stats     cache.Stats   `json:"stats"`
	Metrics   cache.Metrics `json:"metrics"`
	LastEvent *eventRsp     `json:"last_event,omitempty"`
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	snapshot := m.Snapshot()

	rsp := statsRsp{
		Name:     snapshot.Name,
		NumLines: snapshot.NumLines,
		Stats:    snapshot.Stats,
		Metrics:  snapshot.Metrics,
	}

	if e := snapshot.LastEvent; e != nil {
		rsp.LastEvent = &eventRsp{
			Text:      e.String(),
			Hit:       e.IsHit(),
			Block:     e.Block,
			LineIndex: e.LineIndex,
		}
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listLines(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.Snapshot().Lines)
}

func (m *Monitor) lineDetail(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	lines := m.Snapshot().Lines
	if index < 0 || index >= len(lines) {
		w.WriteHeader(http.StatusNotFound)
		_, err = w.Write([]byte("Line not found"))
		dieOnErr(err)

		return
	}

	writeJSON(w, lines[index])
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	statuses := make([]progressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		statuses = append(statuses, b.status())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, statuses)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
