// Package models holds the GORM rows behind each table. Domain types carry no
// ORM tags; every row type converts with a FromDomain constructor and a
// ToDomain method. Value objects and child collections such as verification
// documents, transaction gate checks and escrow release conditions are stored
// in JSONB columns through JSON[T].
package models
