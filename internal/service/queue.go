package service

import "github.com/user/cinequeue/internal/model"

// Queue 候选电影队列与当前游标，循环前进
type Queue struct {
	items []model.Movie
	index int
}

func NewQueue(items []model.Movie) *Queue {
	return &Queue{items: append([]model.Movie(nil), items...)}
}

// Current 当前电影，队列为空时返回 false
func (q *Queue) Current() (model.Movie, bool) {
	if len(q.items) == 0 {
		return model.Movie{}, false
	}
	return q.items[q.index], true
}

// Advance 前进一位，到末尾后回到开头
func (q *Queue) Advance() {
	if len(q.items) == 0 {
		return
	}
	q.index = (q.index + 1) % len(q.items)
}

// Remove 移除电影，游标继续指向原来的下一部电影
func (q *Queue) Remove(movieID string) bool {
	pos := q.position(movieID)
	if pos < 0 {
		return false
	}

	q.items = append(q.items[:pos], q.items[pos+1:]...)
	switch {
	case len(q.items) == 0:
		q.index = 0
	case pos < q.index:
		q.index--
	case q.index >= len(q.items):
		q.index = 0
	}
	return true
}

// Append 追加到队尾，已存在时忽略
func (q *Queue) Append(m model.Movie) bool {
	if q.Contains(m.ID) {
		return false
	}
	q.items = append(q.items, m)
	return true
}

func (q *Queue) Contains(movieID string) bool {
	return q.position(movieID) >= 0
}

func (q *Queue) Len() int {
	return len(q.items)
}

// Items 剩余电影（副本）
func (q *Queue) Items() []model.Movie {
	return append([]model.Movie(nil), q.items...)
}

func (q *Queue) position(movieID string) int {
	for i, m := range q.items {
		if m.ID == movieID {
			return i
		}
	}
	return -1
}
