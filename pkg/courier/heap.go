package courier

import (
	"container/heap"
	"strings"
)

// deliveryHeap implements container/heap.Interface for Delivery,
// earliest first.
type deliveryHeap []Delivery

func (h deliveryHeap) Len() int { return len(h) }
func (h deliveryHeap) Less(i, j int) bool {
	if h[i].At.Equal(h[j].At) {
		return h[i].Notification.Tag < h[j].Notification.Tag
	}
	return h[i].At.Before(h[j].At)
}
func (h deliveryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *deliveryHeap) Push(x any) {
	*h = append(*h, x.(Delivery))
}

func (h *deliveryHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func heapPush(h *deliveryHeap, d Delivery) {
	heap.Push(h, d)
}

// heapPop panics on an empty heap
func heapPop(h *deliveryHeap) Delivery {
	return heap.Pop(h).(Delivery)
}

// heapRemovePrefix drops every delivery whose tag starts with prefix and
// returns how many were removed
func heapRemovePrefix(h *deliveryHeap, prefix string) int {
	kept := (*h)[:0]
	removed := 0
	for _, d := range *h {
		if strings.HasPrefix(d.Notification.Tag, prefix) {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	*h = kept
	heap.Init(h)
	return removed
}
