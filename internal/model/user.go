package model

// UserID is the stable identifier handed out by the identity collaborator.
// The engine trusts it and never looks at credentials.
type UserID string

const EmptyUserID UserID = ""
