package data

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// File type values for the message attachment payload. A message carries at
// most one of the image/video references; FileType says which one, and
// FileTypeText means neither is set.
const (
	FileTypeText  = "text"
	FileTypeImage = "image"
	FileTypeVideo = "video"
)

// User maps to the users collection. The password hash never leaves the
// server; it is excluded from every JSON response.
type User struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email      string        `bson:"email" json:"email"`
	FullName   string        `bson:"full_name" json:"fullName"`
	Password   string        `bson:"password" json:"-"`
	ProfilePic string        `bson:"profile_pic,omitempty" json:"profilePic,omitempty"`
	CreatedAt  time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updatedAt"`
}

// Message maps to the messages collection. CreatedAt is server-assigned on
// insert and immutable afterwards; Read is the only field that is ever
// mutated, and only from false to true.
type Message struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	SenderID   bson.ObjectID `bson:"sender_id" json:"senderID"`
	ReceiverID bson.ObjectID `bson:"receiver_id" json:"receiverID"`
	Text       string        `bson:"text,omitempty" json:"text,omitempty"`
	Image      string        `bson:"image,omitempty" json:"image,omitempty"`
	Video      string        `bson:"video,omitempty" json:"video,omitempty"`
	FileType   string        `bson:"file_type" json:"fileType"`
	FileName   string        `bson:"file_name,omitempty" json:"fileName,omitempty"`
	Read       bool          `bson:"read" json:"read"`
	CreatedAt  time.Time     `bson:"created_at" json:"createdAt"`
}
