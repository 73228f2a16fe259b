package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/mentions/internal/model"
)

// Runner runs the extraction for one analysis period
type Runner interface {
	Run(ctx context.Context, period model.Period) (*model.RunSummary, error)
}

// PeriodJob runs one period
type PeriodJob struct {
	Period model.Period
	Runner Runner
}

// Execute executes the period run
func (j *PeriodJob) Execute(ctx context.Context) Result {
	summary, err := j.Runner.Run(ctx, j.Period)
	return &PeriodResult{
		Period:  j.Period,
		Summary: summary,
		Error:   err,
	}
}

// PeriodResult is the outcome of one period run
type PeriodResult struct {
	Period  model.Period
	Summary *model.RunSummary
	Error   error
}

// GetError returns the run error
func (r *PeriodResult) GetError() error {
	return r.Error
}

// BatchProcessor runs several periods concurrently
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessPeriods runs all periods and returns results in input order
func (b *BatchProcessor) ProcessPeriods(ctx context.Context, periods []model.Period) []*PeriodResult {
	if len(periods) == 0 {
		return []*PeriodResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, p := range periods {
		pool.Submit(&PeriodJob{Period: p, Runner: b.runner})
	}

	results := pool.Wait()

	out := make([]*PeriodResult, len(results))
	for i, r := range results {
		out[i] = r.(*PeriodResult)
	}
	return out
}

// ProcessFile reads periods from a file and runs them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*PeriodResult, error) {
	periods, err := ReadPeriodsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read periods: %w", err)
	}
	return b.ProcessPeriods(ctx, periods), nil
}

// ReadPeriodsFromFile reads "start end [term]" lines; blank lines and
// '#' comments are skipped, repeated periods are read once.
func ReadPeriodsFromFile(filePath string) ([]model.Period, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var periods []model.Period
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("line %d: expected \"start end [term]\", got %q", lineNo, line)
		}
		term := ""
		if len(fields) == 3 {
			term = fields[2]
		}

		p, err := model.ParsePeriod(fields[0], fields[1], term)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		key := p.String() + " " + p.Term
		if !seen[key] {
			seen[key] = true
			periods = append(periods, p)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return periods, nil
}
