//go:build linux || darwin

package kokkosp

import (
	"bytes"
	"runtime"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/danpilch/kptimemory/pkg/config"
	"github.com/danpilch/kptimemory/pkg/profiler"
)

func TestOSThreadsGetOwnContexts(t *testing.T) {
	const threads = 4
	logger, _ := test.NewNullLogger()
	s := testSettings(t)
	conn := New(Options{
		Logger:       logger,
		Stdout:       &bytes.Buffer{},
		LoadSettings: func() (*config.Settings, error) { return s, nil },
	})
	conn.InitLibrary(0, interfaceVersion, 0, nil)

	var (
		ready, done sync.WaitGroup
		release     = make(chan struct{})
		mu          sync.Mutex
		firstIDs    []uint64
	)
	ready.Add(threads)
	done.Add(threads)
	for range threads {
		go func() {
			defer done.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			var id uint64
			conn.BeginParallelFor("k", 0, &id)
			mu.Lock()
			firstIDs = append(firstIDs, id)
			mu.Unlock()

			ready.Done()
			<-release
			conn.EndParallelFor(id)
		}()
	}
	ready.Wait()
	assert.Equal(t, threads, conn.Stats().Threads)
	assert.Equal(t, threads, conn.Stats().Kernels)
	close(release)
	done.Wait()

	assert.Equal(t, []uint64{0, 0, 0, 0}, firstIDs)
	assert.Equal(t, 0, conn.Stats().Kernels)
}

func TestCurrentThreadIDDiffersAcrossOSThreads(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	self := currentThreadID()
	assert.Equal(t, self, currentThreadID())

	other := make(chan int)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		other <- currentThreadID()
	}()
	tid := <-other
	assert.NotZero(t, tid)
	assert.NotEqual(t, self, tid)
}

func TestOSThreadsKeepOwnRegions(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := testSettings(t)
	rec := &recorder{}
	conn := New(Options{
		Logger:       logger,
		Stdout:       &bytes.Buffer{},
		LoadSettings: func() (*config.Settings, error) { return s, nil },
		Wrap:         func(profiler.Factory) profiler.Factory { return rec },
	})
	conn.InitLibrary(0, interfaceVersion, 0, nil)

	pushed := make(chan struct{})
	popped := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		conn.PushProfileRegion("b")
		close(pushed)
		<-popped
		conn.PopProfileRegion()
	}()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	<-pushed
	conn.PushProfileRegion("a")
	conn.PopProfileRegion()
	close(popped)
	<-finished

	assert.Equal(t, []string{
		"new b", "start b",
		"new a", "start a", "stop a",
		"stop b",
	}, rec.Events())
}
