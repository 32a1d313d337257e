package token

// Token is a movable map entity as mirrored from the host platform.
// The host owns the record; zonewatch only reads it.
type Token struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	ActorID     string  `json:"actor_id,omitempty"`
	PlayerOwned bool    `json:"player_owned,omitempty"`
	Hostile     bool    `json:"hostile,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// Update is the partial change record attached to the host's before/after
// token notifications. Absent fields are nil.
type Update struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Hidden   *bool    `json:"hidden,omitempty"`
}

// MovesToken reports whether the update touches the token's position.
// This is the sole gate for transition processing: rotation-only or
// visibility-only updates are ignored.
func (u Update) MovesToken() bool {
	return u.X != nil || u.Y != nil
}
