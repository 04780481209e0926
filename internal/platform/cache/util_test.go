package cache

import (
	"testing"
	"time"
)

func TestTimeUntilMarketClose(t *testing.T) {
	d := TimeUntilMarketClose()

	if d <= 0 {
		t.Errorf("expected positive duration, got %v", d)
	}
	if d > 24*time.Hour {
		t.Errorf("expected duration within 24 hours, got %v", d)
	}
}
