package component

import (
	"encoding/csv"
	"encoding/hex"
	"log"
	"os"
	"strconv"

	"github.com/ScottHakoda/Networks/sim/model"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

var traceHeader = []string{"Nanoseconds", "Channel", "Hex Bytes"}

// TraceRecorder appends timestamped, channel-tagged byte records to a CSV
// file, flushing after every record so a trial killed midway still leaves a
// usable trace.
type TraceRecorder struct {
	sim    model.SimContext
	output *csv.Writer
}

// MakeNullTraceRecorder returns a recorder that silently discards records.
func MakeNullTraceRecorder() *TraceRecorder {
	return &TraceRecorder{}
}

func MakeTraceRecorder(sim model.SimContext, path string) *TraceRecorder {
	w, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	cw := csv.NewWriter(w)
	err = cw.Write(traceHeader)
	cw.Flush()
	if err == nil {
		err = cw.Error()
	}
	if err != nil {
		log.Fatal(err)
	}
	return &TraceRecorder{
		sim:    sim,
		output: cw,
	}
}

func (r *TraceRecorder) IsRecording() bool {
	return r.output != nil
}

func (r *TraceRecorder) Record(channel string, dataBytes []byte) {
	if channel == "" {
		panic("invalid empty channel name")
	}
	if r.output == nil {
		return
	}
	err := r.output.Write([]string{
		strconv.FormatUint(r.sim.Now().Nanoseconds(), 10),
		channel,
		hex.EncodeToString(dataBytes),
	})
	r.output.Flush()
	if err == nil {
		err = r.output.Error()
	}
	if err != nil {
		log.Fatal(err)
	}
}

type TraceRecord struct {
	Timestamp model.VirtualTime
	Channel   string
	Bytes     []byte
}

// DecodeTrace reads back a trace written by TraceRecorder.
func DecodeTrace(path string) (records []TraceRecord, re error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "while parsing trace %q", path)
	}
	if len(rows) < 1 {
		return nil, errors.New("no header found")
	}
	if len(rows[0]) != len(traceHeader) || rows[0][0] != traceHeader[0] ||
		rows[0][1] != traceHeader[1] || rows[0][2] != traceHeader[2] {
		return nil, errors.Errorf("invalid header: %v", rows[0])
	}
	for i, row := range rows[1:] {
		if len(row) != 3 {
			return nil, errors.Errorf("invalid record on line %d: %v", i+2, row)
		}
		ns, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid timestamp on line %d", i+2)
		}
		timestamp, ok := model.FromNanoseconds(ns)
		if !ok {
			return nil, errors.Errorf("invalid timestamp on line %d: %v", i+2, row[0])
		}
		if row[1] == "" {
			return nil, errors.Errorf("invalid empty channel on line %d", i+2)
		}
		dataBytes, err := hex.DecodeString(row[2])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid data bytes on line %d", i+2)
		}
		records = append(records, TraceRecord{
			Timestamp: timestamp,
			Channel:   row[1],
			Bytes:     dataBytes,
		})
	}
	return records, nil
}
