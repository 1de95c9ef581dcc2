package telemetry

import "sync"

// Report is a single call made against a Recorder.
type Report struct {
	Kind   string
	ID     string
	Params []any
	Count  int64
}

// Recorder is an API that keeps every report in memory, it exists so tests
// can assert which components reported what.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func (r *Recorder) push(report Report) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, report)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.push(Report{Kind: "broken", ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.push(Report{Kind: "warning", ID: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.push(Report{Kind: "debug", ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.push(Report{Kind: "count", ID: id, Count: count})
}

// Reports returns a copy of the reports of the given kind, or all of them
// when kind is empty.
func (r *Recorder) Reports(kind string) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if kind == "" || report.Kind == kind {
			out = append(out, report)
		}
	}
	return out
}

// IDs returns the ids of the reports of the given kind in the order they were made.
func (r *Recorder) IDs(kind string) []string {
	reports := r.Reports(kind)
	ids := make([]string, len(reports))
	for i, report := range reports {
		ids[i] = report.ID
	}
	return ids
}
