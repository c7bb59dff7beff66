package model

import "fmt"

type Progress struct {
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Progress  string `json:"progress"`
}

// NewProgress counts completed tasks. An empty collection yields "0/0".
func NewProgress(tasks []Task) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			p.Completed++
		}
	}

	if p.Total == 0 {
		p.Progress = "0/0"
		return p
	}
	p.Progress = fmt.Sprintf("%d/%d", p.Completed, p.Total)
	return p
}
