package eventbus

import "testing"

func TestSubscribeCategoryFiltering(t *testing.T) {
	b := New()
	var trackingSeen, threatSeen int

	b.Subscribe(CategoryTracking, func(Record) { trackingSeen++ })
	b.Subscribe(CategoryThreat, func(Record) { threatSeen++ })

	b.Publish(Record{ID: EvtTrackNew, Category: CategoryTracking})
	b.Publish(Record{ID: EvtThreatEval, Category: CategoryThreat})
	b.Publish(Record{ID: EvtTrackUpdate, Category: CategoryTracking})

	if trackingSeen != 2 {
		t.Fatalf("trackingSeen = %d, want 2", trackingSeen)
	}
	if threatSeen != 1 {
		t.Fatalf("threatSeen = %d, want 1", threatSeen)
	}
}

func TestSubscribeAllSeesEveryCategory(t *testing.T) {
	b := New()
	var seen int
	b.SubscribeAll(func(Record) { seen++ })

	b.Publish(Record{Category: CategoryTracking})
	b.Publish(Record{Category: CategoryHealth})
	b.Publish(Record{Category: CategoryControl})

	if seen != 3 {
		t.Fatalf("seen = %d, want 3", seen)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	var seen int
	id := b.Subscribe(CategoryNetwork, func(Record) { seen++ })

	b.Publish(Record{Category: CategoryNetwork})
	b.Unsubscribe(id)
	b.Publish(Record{Category: CategoryNetwork})

	if seen != 1 {
		t.Fatalf("seen = %d, want 1", seen)
	}
}

func TestReentrantPublishFromCallbackDoesNotDeadlock(t *testing.T) {
	b := New()
	var inner int
	b.SubscribeAll(func(r Record) {
		if r.ID == EvtSeqGap {
			inner++
			return
		}
		b.Publish(Record{ID: EvtSeqGap, Category: CategoryNetwork})
	})

	b.Publish(Record{ID: EvtSeqReorder, Category: CategoryNetwork})

	if inner != 1 {
		t.Fatalf("inner = %d, want 1", inner)
	}
}

func TestReentrantUnsubscribeFromCallbackDoesNotDeadlock(t *testing.T) {
	b := New()
	var outerID uint32
	var called int
	outerID = b.SubscribeAll(func(Record) {
		called++
		b.Unsubscribe(outerID)
	})

	b.Publish(Record{Category: CategoryHealth})
	b.Publish(Record{Category: CategoryHealth})

	if called != 1 {
		t.Fatalf("called = %d, want 1 (self-unsubscribe should prevent a second delivery)", called)
	}
}

func TestReentrantSubscribeFromCallbackDoesNotDeadlockOrApplyImmediately(t *testing.T) {
	b := New()
	var added int
	b.SubscribeAll(func(Record) {
		if added == 0 {
			added++
			b.Subscribe(CategoryHealth, func(Record) {})
		}
	})

	// Publishing must not deadlock even though the callback mutates subs
	// mid-dispatch; the snapshot taken for this publish call is unaffected.
	b.Publish(Record{Category: CategoryHealth})
	b.Publish(Record{Category: CategoryHealth})
}
