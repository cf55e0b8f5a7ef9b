package store

import (
	"testing"

	"github.com/i474232898/city-weather/internal/weather"
)

func TestMemoryStoreNormalizesKeys(t *testing.T) {
	s := NewMemoryStore()

	s.Save("Moscow", weather.Record{City: "Moscow", TemperatureKelvin: 290})

	rec, ok := s.Get("MOSCOW")
	if !ok {
		t.Fatal("expected cached record for MOSCOW")
	}
	if rec.TemperatureKelvin != 290 {
		t.Fatalf("expected 290, got %v", rec.TemperatureKelvin)
	}

	snap := s.Snapshot()
	if _, ok := snap["moscow"]; !ok {
		t.Fatalf("expected snapshot keyed by normalized name, got %v", snap)
	}
}

func TestMemoryStoreOverwriteAndDelete(t *testing.T) {
	s := NewMemoryStore()

	s.Save("London", weather.Record{TemperatureKelvin: 280})
	s.Save("london", weather.Record{TemperatureKelvin: 281})

	rec, _ := s.Get("London")
	if rec.TemperatureKelvin != 281 {
		t.Fatalf("expected last write to win, got %v", rec.TemperatureKelvin)
	}

	s.Delete("LONDON")
	if _, ok := s.Get("london"); ok {
		t.Fatal("expected record to be evicted")
	}
}

func TestMemoryStoreSnapshotIsCopy(t *testing.T) {
	s := NewMemoryStore()
	s.Save("Paris", weather.Record{City: "Paris"})

	snap := s.Snapshot()
	delete(snap, "paris")

	if _, ok := s.Get("Paris"); !ok {
		t.Fatal("mutating the snapshot must not affect the store")
	}
}

func TestMemoryStoreFoldsFinalSigma(t *testing.T) {
	s := NewMemoryStore()
	l := NewCityList("Κος", "A")

	s.Save("ΚΟΣ", weather.Record{TemperatureKelvin: 300})

	if l.IndexOf("ΚΟΣ") != 0 {
		t.Fatalf("expected ΚΟΣ to match list entry 0, got %d", l.IndexOf("ΚΟΣ"))
	}
	if _, ok := s.Get("Κος"); !ok {
		t.Fatal("expected record saved as ΚΟΣ to be found as Κος")
	}

	s.Delete("Κος")
	if snap := s.Snapshot(); len(snap) != 0 {
		t.Fatalf("expected empty cache after delete, got %v", snap)
	}
}
