package ingest

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/KaramelBytes/histx/internal/logger"
	"github.com/KaramelBytes/histx/internal/parser"
	"github.com/patrickmn/go-cache"
)

// Source selects where a dataset comes from.
type Source string

const (
	SourceSample Source = "sample"
	SourceUpload Source = "upload"
)

const (
	MsgUploaded     = "✅ File uploaded successfully!"
	MsgSampleLoaded = "✅ Sample dataset loaded"
)

// ErrInvalidSource indicates a selector other than sample or upload.
var ErrInvalidSource = errors.New("invalid data source")

//go:embed sample/screen_time.csv
var sampleCSV []byte

const sampleName = "screen_time.csv"

// ParseSource converts a form value into a Source.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceSample, SourceUpload:
		return Source(s), nil
	case "":
		return SourceUpload, nil
	}
	return "", fmt.Errorf("%w: %q (use sample or upload)", ErrInvalidSource, s)
}

// Upload is a user-supplied file. A nil *Upload or one with no content
// means nothing was selected.
type Upload struct {
	Name string
	Data []byte
}

// Result is the outcome of one ingestion call. Message is empty when
// nothing was loaded.
type Result struct {
	Dataset *dataset.Dataset
	Message string
	Cached  bool
}

// Loader turns a source selection into a Dataset, memoizing parsed results
// by source and file identity. A Loader belongs to one session.
type Loader struct {
	cache      *cache.Cache
	opt        dataset.Options
	samplePath string
	log        logger.Logger
}

// NewLoader creates a loader whose memo entries live for ttl. samplePath,
// when set, replaces the bundled sample dataset.
func NewLoader(opt dataset.Options, samplePath string, ttl time.Duration, log logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		cache:      cache.New(ttl, ttl*2),
		opt:        opt,
		samplePath: samplePath,
		log:        log,
	}
}

// Load produces a Dataset for the selection. Upload mode without a file
// yields an empty Dataset and no message rather than an error.
func (l *Loader) Load(src Source, up *Upload) (*Result, error) {
	if src == SourceUpload && (up == nil || len(up.Data) == 0) {
		return &Result{Dataset: dataset.Empty("")}, nil
	}
	key, err := l.key(src, up)
	if err != nil {
		return nil, err
	}
	if x, found := l.cache.Get(key); found {
		res := *x.(*Result)
		res.Cached = true
		return &res, nil
	}

	var res *Result
	switch src {
	case SourceSample:
		ds, err := l.loadSample()
		if err != nil {
			return nil, err
		}
		res = &Result{Dataset: ds, Message: MsgSampleLoaded}
	case SourceUpload:
		ds, err := parser.Parse(up.Name, up.Data, l.opt)
		if err != nil {
			l.log.Warn("ingest", "upload rejected", map[string]interface{}{"file": up.Name, "error": err.Error()})
			return nil, err
		}
		res = &Result{Dataset: ds}
		if !ds.IsEmpty() {
			res.Message = MsgUploaded
		}
	}
	l.log.Info("ingest", "dataset loaded", map[string]interface{}{
		"source": string(src),
		"name":   res.Dataset.Name,
		"rows":   res.Dataset.Rows(),
		"cols":   len(res.Dataset.Columns),
	})
	l.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}

func (l *Loader) key(src Source, up *Upload) (string, error) {
	switch src {
	case SourceSample:
		if l.samplePath != "" {
			return "sample:" + l.samplePath, nil
		}
		return "sample:embedded", nil
	case SourceUpload:
		sum := sha256.Sum256(up.Data)
		return "upload:" + up.Name + ":" + hex.EncodeToString(sum[:]), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSource, src)
}

func (l *Loader) loadSample() (*dataset.Dataset, error) {
	if l.samplePath != "" {
		return parser.ParseFile(l.samplePath, l.opt)
	}
	return parser.Parse(sampleName, sampleCSV, l.opt)
}
