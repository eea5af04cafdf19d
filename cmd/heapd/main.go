// heapd is a small demonstration binary for the heap package: it builds a
// toy object graph exercising a reference cycle, a weak array, and an
// ephemeron, drives the incremental collector across it, performs a
// Become, and prints the resulting diagnostics.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chazu/maggie/heap"
)

func main() {
	configPath := flag.String("config", "heap.toml", "path to a heap tuning file")
	steps := flag.Int("steps", 64, "number of GCStep calls to drive after building the graph")
	verbose := flag.Bool("v", false, "print the object table size after every 8 steps")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: heapd [options]\n\n")
		fmt.Fprintf(os.Stderr, "Builds a toy heap graph, runs the collector over it, and reports stats.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	config, err := heap.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heapd: %v\n", err)
		os.Exit(1)
	}

	h := heap.NewHeap(config, nil)
	defer h.Close()

	buildToyGraph(h)

	for i := 0; i < *steps; i++ {
		h.GCStep()
		if *verbose && (i+1)%8 == 0 {
			s := h.Stats()
			fmt.Printf("after step %d: objects=%d classes=%d\n", i+1, s.ObjectCount, s.ClassCount)
		}
	}

	demonstrateBecome(h)

	for _, entry := range h.DrainFinalizers() {
		fmt.Printf("finalizer fired for old value %v (finalizer object %v)\n", entry.OldValue, entry.Finalizer)
	}

	stats := h.Stats()
	fmt.Printf("final stats: objects=%d classes=%d heap-size=%d gc-count=%d max-gc=%s total-gc=%s\n",
		stats.ObjectCount, stats.ClassCount, stats.HeapSize, stats.GCCount, stats.MaxGCTime, stats.TotalGCTime)
}

// buildToyGraph allocates a self-referential pair with no root (garbage as
// soon as GCStep gets to it), a rooted WeakArray observing an otherwise
// unreferenced object without keeping it alive, and an Ephemeron whose key will be collected once its
// only other reference (the root array below) is retargeted away.
func buildToyGraph(h *heap.Heap) {
	root := h.AllocateArray(3, heap.AllocNormal)
	var rootRef heap.Ref
	rootRef.InitRoot(heap.FromHeader(root.Head()))

	cycleA := h.AllocateArray(1, heap.AllocNormal)
	cycleB := h.AllocateArray(1, heap.AllocNormal)
	cycleA.Elements[0].Update(heap.FromHeader(cycleB.Head()))
	cycleB.Elements[0].Update(heap.FromHeader(cycleA.Head()))

	observed := h.AllocateArray(0, heap.AllocNormal)
	weak := h.AllocateWeakArray(1, heap.AllocNormal)
	weak.Elements[0].Update(heap.FromHeader(observed.Head()))
	root.Elements[0].Update(heap.FromHeader(weak.Head()))

	ephemeronKey := h.AllocateArray(0, heap.AllocNormal)
	ephemeronFinalizer := h.AllocateArray(0, heap.AllocNormal)
	eph := h.AllocateEphemeron(heap.AllocNormal)
	eph.Key.Update(heap.FromHeader(ephemeronKey.Head()))
	eph.Finalizer.Update(heap.FromHeader(ephemeronFinalizer.Head()))
	root.Elements[1].Update(heap.FromHeader(eph.Head()))
	root.Elements[2].Update(heap.FromHeader(ephemeronKey.Head()))

	// Drop the root's only strong path to the ephemeron's key: once
	// GCStep proves it unreachable, unlink routes it through
	// finalizeEphemeron instead of a plain nil-out.
	root.Elements[2].Update(heap.FromSmallInteger(0))
}

// demonstrateBecome swaps a freshly allocated object in for one already
// referenced elsewhere, showing every existing pointer retarget.
func demonstrateBecome(h *heap.Heap) {
	oldObj := h.AllocateArray(0, heap.AllocNormal)
	holder := h.AllocateArray(1, heap.AllocNormal)
	holder.Elements[0].Update(heap.FromHeader(oldObj.Head()))

	var holderRoot heap.Ref
	holderRoot.InitRoot(heap.FromHeader(holder.Head()))

	newObj := h.AllocateArray(0, heap.AllocNormal)
	if !h.Become([]heap.Value{heap.FromHeader(oldObj.Head())}, []heap.Value{heap.FromHeader(newObj.Head())}) {
		fmt.Fprintln(os.Stderr, "heapd: become failed")
		return
	}
	fmt.Printf("become: holder now points at %v\n", holder.Elements[0].To())
}
