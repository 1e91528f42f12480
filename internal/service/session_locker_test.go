package service_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fireenrich/internal/service"
)

func TestSessionLocker_SerializesSameSession(t *testing.T) {
	locker := service.NewSessionLocker()
	id := uuid.New()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(id)
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestSessionLocker_IndependentSessions(t *testing.T) {
	locker := service.NewSessionLocker()
	unlockA := locker.Lock(uuid.New())
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locker.Lock(uuid.New())
		unlock()
		close(done)
	}()
	<-done
}
