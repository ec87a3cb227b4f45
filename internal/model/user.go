package model

// User is a member of the roster. Line items refer to users by Name only.
type User struct {
	Name string
	Tags []string
}

// HasTag reports whether the user carries tag.
func (u User) HasTag(tag string) bool {
	for _, t := range u.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// UserNames returns the roster names in roster order.
func UserNames(users []User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}
	return names
}

// FindUser returns the index of the user called name, or -1.
func FindUser(users []User, name string) int {
	for i, u := range users {
		if u.Name == name {
			return i
		}
	}
	return -1
}
