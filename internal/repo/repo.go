// Package repo is the persistence layer for user records. The rest of the
// service sees only keyed lookups and writes; cross-call consistency is the
// database's concern.
package repo

import "gorm.io/gorm"

type GormRepo struct {
	DB *gorm.DB
}
