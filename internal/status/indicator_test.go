package status

import (
	"testing"

	"motionberry-cli/pkg/models"
)

func exclusive(t *testing.T, b *Board) {
	t.Helper()
	for _, cat := range Categories {
		b.Each(cat, func(ind *Indicator) {
			if ind.On() == ind.Off() {
				t.Fatalf("%s indicator has on=%v off=%v", cat, ind.On(), ind.Off())
			}
		})
	}
}

func TestNewIndicatorShowsOff(t *testing.T) {
	ind := NewIndicator()
	if ind.On() || !ind.Off() {
		t.Fatalf("new indicator on=%v off=%v", ind.On(), ind.Off())
	}
}

func TestApplyKeepsPairsExclusive(t *testing.T) {
	b := NewBoard(Layout{CategoryCamera: 2, CategoryRecording: 3, CategoryMotion: 1})
	vals := []*bool{nil, models.Bool(true), models.Bool(false)}

	for _, cam := range vals {
		for _, rec := range vals {
			for _, mot := range vals {
				st := models.Status{IsCameraRunning: cam, IsRecording: rec, IsMotionDetecting: mot}
				Apply(b, st)
				exclusive(t, b)

				check := func(cat Category, v *bool) {
					if v == nil {
						return
					}
					b.Each(cat, func(ind *Indicator) {
						if ind.On() != *v {
							t.Fatalf("%s indicator on=%v, want %v", cat, ind.On(), *v)
						}
					})
				}
				check(CategoryCamera, cam)
				check(CategoryRecording, rec)
				check(CategoryMotion, mot)
			}
		}
	}
}

func TestApplyMissingIndicatorsIsSilent(t *testing.T) {
	b := NewBoard(Layout{CategoryRecording: 1})
	applied := Apply(b, models.Status{
		IsCameraRunning:   models.Bool(true),
		IsRecording:       models.Bool(true),
		IsMotionDetecting: models.Bool(true),
	})
	if len(applied) != 3 {
		t.Fatalf("applied = %v", applied)
	}
	if n := b.Set(CategoryMotion, true); n != 0 {
		t.Fatalf("expected no motion indicators, got %d", n)
	}

	snap := b.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot should only hold recording, got %+v", snap)
	}
	if _, ok := snap.Get(CategoryCamera); ok {
		t.Fatal("camera should be absent from snapshot")
	}

	empty := NewBoard(nil)
	Apply(empty, models.Status{IsRecording: models.Bool(false)})
	if len(empty.Snapshot()) != 0 {
		t.Fatal("empty board should have empty snapshot")
	}
}

func TestApplyRecordingScenario(t *testing.T) {
	b := NewBoard(DefaultLayout())
	Apply(b, models.Status{IsCameraRunning: models.Bool(true)})

	Apply(b, models.Status{IsRecording: models.Bool(true), IsMotionDetecting: models.Bool(false)})

	snap := b.Snapshot()
	rec, _ := snap.Get(CategoryRecording)
	mot, _ := snap.Get(CategoryMotion)
	cam, _ := snap.Get(CategoryCamera)
	if !rec.On || !rec.Known {
		t.Errorf("recording should be on: %+v", rec)
	}
	if mot.On || !mot.Known {
		t.Errorf("motion should be off: %+v", mot)
	}
	if !cam.On {
		t.Errorf("camera should keep its previous on state: %+v", cam)
	}
}
