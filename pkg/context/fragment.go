package context

// MaxShrinkRounds 可丢弃片段最多被压缩的次数；
// 已压缩这么多次的片段下一次被选中时会被删除。
const MaxShrinkRounds = 3

// Fragment 是 Message 中的一段文本。
type Fragment interface {
	// Seq 返回片段在所属 Message 中的插入序号。
	Seq() int
	// Text 返回片段当前的文本。
	Text() string
}

// PinnedFragment 是不可修改、不可删除的片段。
type PinnedFragment struct {
	seq  int
	text string
}

// Seq 返回插入序号。
func (f *PinnedFragment) Seq() int { return f.seq }

// Text 返回文本。
func (f *PinnedFragment) Text() string { return f.text }

// DroppableFragment 是超出预算时可以被压缩或删除的片段。
type DroppableFragment struct {
	shrinkCount int
	importance  int
	seq         int
	text        string

	// index 是片段在堆中的位置，-1 表示已不在堆中
	index int
}

// Seq 返回插入序号。
func (f *DroppableFragment) Seq() int { return f.seq }

// Text 返回当前文本（可能已被压缩）。
func (f *DroppableFragment) Text() string { return f.text }

// ShrinkCount 返回已被压缩的次数。
func (f *DroppableFragment) ShrinkCount() int { return f.shrinkCount }

// Importance 返回调用方指定的重要度。
func (f *DroppableFragment) Importance() int { return f.importance }

// droppableHeap 按 (shrinkCount, importance, seq) 排序的最小堆，实现 heap.Interface。
type droppableHeap []*DroppableFragment

func (h droppableHeap) Len() int { return len(h) }

func (h droppableHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.shrinkCount != b.shrinkCount {
		return a.shrinkCount < b.shrinkCount
	}
	if a.importance != b.importance {
		return a.importance < b.importance
	}
	return a.seq < b.seq
}

func (h droppableHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *droppableHeap) Push(x any) {
	f := x.(*DroppableFragment)
	f.index = len(*h)
	*h = append(*h, f)
}

func (h *droppableHeap) Pop() any {
	old := *h
	n := len(old)
	f := old[n-1]
	old[n-1] = nil
	f.index = -1
	*h = old[:n-1]
	return f
}

// 编译时接口检查
var _ Fragment = (*PinnedFragment)(nil)
var _ Fragment = (*DroppableFragment)(nil)
