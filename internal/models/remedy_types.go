package models

import "time"

// Remedy defines the struct for the 'remedies' table
type Remedy struct {
	ID          int64     `json:"id" db:"id"`
	AilmentID   int64     `json:"ailmentId" db:"ailment_id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	LikesCount  int64     `json:"likesCount" db:"likes_count"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Ailment defines the struct for the 'ailments' table
type Ailment struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// RemedyLike defines the struct for the 'remedy_likes' table.
// One row per (user, remedy) pair; its existence IS the like.
type RemedyLike struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	RemedyID  int64     `json:"remedyId" db:"remedy_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
