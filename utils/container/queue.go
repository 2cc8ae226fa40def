package container

// Queue 环形缓冲区实现的先进先出队列
// 功能：提供O(1)均摊的入队、出队操作，作为广度优先搜索的frontier
// 说明：容量不足时按2倍扩容，非线程安全
type Queue[T any] struct {
	buf  []T // 环形缓冲区
	head int // 队首下标
	size int // 元素个数
}

// NewQueue 创建队列
// 功能：初始化一个指定初始容量的队列
// 参数：capacity-初始容量（<1时按1处理）
// 返回：新创建的队列指针
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{buf: make([]T, capacity)}
}

// Len 返回队列长度
func (q *Queue[T]) Len() int {
	return q.size
}

// Push 入队
// 功能：将元素追加到队尾
// 参数：v-要添加的元素
// 算法说明：
// 1. 如果缓冲区已满，按2倍容量重新分配并按队列顺序拷贝
// 2. 将元素写入 (head+size)%cap 位置
func (q *Queue[T]) Push(v T) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = v
	q.size++
}

// Pop 出队
// 功能：移除并返回队首元素
// 返回：队首元素，队列为空时返回零值和false
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero // 避免内存泄漏
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// Peek 查看队首元素但不移除
func (q *Queue[T]) Peek() (T, bool) {
	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.buf[q.head], true
}

// Clear 清空队列，保留已分配的容量
func (q *Queue[T]) Clear() {
	var zero T
	for i := range q.buf {
		q.buf[i] = zero
	}
	q.head = 0
	q.size = 0
}

func (q *Queue[T]) grow() {
	buf := make([]T, len(q.buf)*2)
	for i := 0; i < q.size; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
