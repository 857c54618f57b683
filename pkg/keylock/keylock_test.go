package keylock_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gestion-escolar/pkg/keylock"
)

func TestLock_SerializaMismaClave(t *testing.T) {
	l := keylock.New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("item:1")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter, "todas las secciones críticas deben ejecutarse en exclusión")
	assert.Equal(t, 0, l.Len(), "sin usuarios no deben quedar entradas")
}

func TestLock_ClavesDistintasNoSeBloquean(t *testing.T) {
	l := keylock.New()
	unlockA := l.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := l.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
	assert.Equal(t, 0, l.Len())
}

func TestLock_UnlockIdempotente(t *testing.T) {
	l := keylock.New()
	unlock := l.Lock("x")
	unlock()
	unlock()
	assert.Equal(t, 0, l.Len(), "liberar dos veces no debe corromper el conteo")
}
