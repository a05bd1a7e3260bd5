package scoring

import "testing"

func TestAlertRule_FiresBelowThreshold(t *testing.T) {
	r := AlertRule{Threshold: DefaultAlertThreshold}

	msg, fired := r.Evaluate(70)
	if !fired {
		t.Fatal("expected alert at 70%")
	}
	if msg != "volunteer performance dropped to 70.0%" {
		t.Fatalf("unexpected message: %q", msg)
	}

	if _, fired := r.Evaluate(75); fired {
		t.Fatal("no alert expected at exactly the threshold")
	}
	if _, fired := r.Evaluate(90); fired {
		t.Fatal("no alert expected above the threshold")
	}
	if _, fired := r.Evaluate(0); !fired {
		t.Fatal("expected alert at 0%")
	}
}

func TestAlertRule_MessageOneDecimal(t *testing.T) {
	r := AlertRule{Threshold: 75}
	msg, fired := r.Evaluate(66.666)
	if !fired {
		t.Fatal("expected alert")
	}
	if msg != "volunteer performance dropped to 66.7%" {
		t.Fatalf("unexpected message: %q", msg)
	}
}
