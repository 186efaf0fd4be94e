package models

import (
	"fmt"
	"time"
)

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

type FriendshipStatus string

const (
	FriendshipActive  FriendshipStatus = "active"
	FriendshipBlocked FriendshipStatus = "blocked"
)

// FriendRequest is a directed edge sender -> receiver. PendingKey is set
// only while the request is pending, so the unique index on it allows at
// most one pending request per unordered pair.
type FriendRequest struct {
	ID         uint                `json:"id" gorm:"primaryKey"`
	SenderID   uint                `json:"sender_id" gorm:"not null;index"`
	ReceiverID uint                `json:"receiver_id" gorm:"not null;index"`
	Status     FriendRequestStatus `json:"status" gorm:"not null;size:20;default:pending;index"`
	Message    *string             `json:"message" gorm:"type:text"`
	PendingKey *string             `json:"-" gorm:"uniqueIndex;size:50"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Sender   *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Receiver *User `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

func (r *FriendRequest) IsPending() bool {
	return r.Status == FriendRequestPending
}

// Friendship is an undirected edge stored in canonical order
// (UserLowID < UserHighID).
type Friendship struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	UserLowID  uint             `json:"user_low_id" gorm:"not null;uniqueIndex:idx_friendship_pair"`
	UserHighID uint             `json:"user_high_id" gorm:"not null;uniqueIndex:idx_friendship_pair;index"`
	Status     FriendshipStatus `json:"status" gorm:"not null;size:20;default:active"`
	CreatedAt  time.Time        `json:"created_at"`

	UserLow  *User `json:"user_low,omitempty" gorm:"foreignKey:UserLowID"`
	UserHigh *User `json:"user_high,omitempty" gorm:"foreignKey:UserHighID"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// Other returns the endpoint of the edge that is not userID.
func (f *Friendship) Other(userID uint) (uint, *User) {
	if f.UserLowID == userID {
		return f.UserHighID, f.UserHigh
	}
	return f.UserLowID, f.UserLow
}

// OrderedPair returns a and b with the smaller id first.
func OrderedPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// PairKey is the normalized key of an unordered user pair.
func PairKey(a, b uint) string {
	low, high := OrderedPair(a, b)
	return fmt.Sprintf("%d:%d", low, high)
}
