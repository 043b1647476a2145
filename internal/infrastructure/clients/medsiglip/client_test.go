package medsiglip

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRecordMetricConcurrentFirstUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recordEmbeddingMetric(context.Background(), "medsiglip", 200, 10*time.Millisecond, nil)
		}()
	}
	wg.Wait()
}
