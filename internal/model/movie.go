package model

// Movie is a catalog entry.  Any number of movies may share a name.
type Movie struct {
    ID       uint64 `db:"id" json:"id"`             // movies.id
    Name     string `db:"name" json:"name"`         // movies.name
    Synopsis string `db:"synopsis" json:"synopsis"` // movies.synopsis
    Genre    string `db:"genre" json:"genre"`       // movies.genre
}
