package models

type AccountType string

const (
	AccountAdmin      AccountType = "Admin"
	AccountStudent    AccountType = "Student"
	AccountInstructor AccountType = "Instructor"
)

// Profile is the "additional details" sub-document of a User.
type Profile struct {
	ID            string `json:"_id" firestore:"-" bson:"_id" mapstructure:"_id"`
	Gender        string `json:"gender" firestore:"gender" bson:"gender" mapstructure:"gender"`
	DateOfBirth   string `json:"dateOfBirth" firestore:"dateOfBirth" bson:"dateOfBirth" mapstructure:"dateOfBirth"`
	About         string `json:"about" firestore:"about" bson:"about" mapstructure:"about"`
	ContactNumber string `json:"contactNumber" firestore:"contactNumber" bson:"contactNumber" mapstructure:"contactNumber"`
}

// User represents a registered user. Courses holds the courses the user teaches or is enrolled in.
type User struct {
	ID                string      `json:"_id" firestore:"-" bson:"_id" mapstructure:"_id"`
	FirstName         string      `json:"firstName" firestore:"firstName" bson:"firstName" mapstructure:"firstName"`
	LastName          string      `json:"lastName" firestore:"lastName" bson:"lastName" mapstructure:"lastName"`
	Email             string      `json:"email" firestore:"email" bson:"email" mapstructure:"email"`
	AccountType       AccountType `json:"accountType" firestore:"accountType" bson:"accountType" mapstructure:"accountType"`
	Image             string      `json:"image" firestore:"image" bson:"image" mapstructure:"image"`
	AdditionalDetails string      `json:"additionalDetails" firestore:"additionalDetails" bson:"additionalDetails" mapstructure:"additionalDetails"`
	Courses           []string    `json:"courses" firestore:"courses" bson:"courses" mapstructure:"courses"`
}

// UserDetails is a User with its additional details expanded.
type UserDetails struct {
	*User
	AdditionalDetails *Profile `json:"additionalDetails"`
}
