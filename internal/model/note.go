package model

import "time"

// Note はユーザーが所有するテキストノートを表す。
// タイトルは所有者ごとに一意。
type Note struct {
	ID        string
	Title     string
	Content   string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotePatch はノートの部分更新内容を表す。
// nilのフィールドは既存の値を維持する。
type NotePatch struct {
	Title   *string
	Content *string
}

// IsEmpty は更新対象のフィールドが1つもない場合にtrueを返す。
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil
}
