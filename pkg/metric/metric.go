// Package metric publishes expvar counters along with a rolling per-minute history.
package metric

import (
	"container/list"
	"expvar"
	"strings"
	"sync"
	"time"
)

// HistoryLen is the number of entries kept per history.  One more than an hour, because clients
// chart deltas between entries and the first has nothing to compare against.
const HistoryLen = 61

// TickerFunc is the function signature accepted by AddTickerFunc, will be called once per minute.
type TickerFunc func()

var tickerFuncChan = make(chan TickerFunc)

func init() {
	go metricsTicker()
}

// AddTickerFunc adds a new function callback to the list of metrics TickerFuncs that get
// called each minute.
func AddTickerFunc(f TickerFunc) {
	tickerFuncChan <- f
}

// Counter is a running total published as <name>Total, with its history published as
// <name>Hist.
type Counter struct {
	total   *expvar.Int
	hist    *expvar.String
	mu      sync.Mutex
	history *list.List
}

// NewCounter publishes a counter in m and schedules its history updates.
func NewCounter(m *expvar.Map, name string) *Counter {
	c := &Counter{
		total:   new(expvar.Int),
		hist:    new(expvar.String),
		history: list.New(),
	}
	m.Set(name+"Total", c.total)
	m.Set(name+"Hist", c.hist)
	AddTickerFunc(c.Tick)
	return c
}

// Add increments the counter by delta.
func (c *Counter) Add(delta int64) {
	c.total.Add(delta)
}

// Value returns the current total.
func (c *Counter) Value() int64 {
	return c.total.Value()
}

// Tick records the current total in the history.
func (c *Counter) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hist.Set(Push(c.history, c.total))
}

// History returns the rendered history.
func (c *Counter) History() string {
	return c.hist.Value()
}

// Push adds the metric to the end of the list and returns a comma separated string of the
// previous HistoryLen entries.
func Push(history *list.List, ev expvar.Var) string {
	history.PushBack(ev.String())
	if history.Len() > HistoryLen {
		history.Remove(history.Front())
	}
	return joinStringList(history)
}

// metricsTicker calls the current list of TickerFuncs once per minute.
func metricsTicker() {
	funcs := make([]TickerFunc, 0)
	ticker := time.NewTicker(time.Minute)

	for {
		select {
		case <-ticker.C:
			for _, f := range funcs {
				f()
			}
		case f := <-tickerFuncChan:
			funcs = append(funcs, f)
		}
	}
}

// joinStringList joins a List containing strings by commas.
func joinStringList(listOfStrings *list.List) string {
	if listOfStrings.Len() == 0 {
		return ""
	}
	s := make([]string, 0, listOfStrings.Len())
	for e := listOfStrings.Front(); e != nil; e = e.Next() {
		s = append(s, e.Value.(string))
	}
	return strings.Join(s, ",")
}
