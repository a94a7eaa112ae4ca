package models

import "github.com/uptrace/bun"

type Specialty struct {
	bun.BaseModel `bun:"table:specialties,alias:sp"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string `bun:"name,notnull,unique" json:"name,omitempty"`
}

type Language struct {
	bun.BaseModel `bun:"table:languages,alias:lang"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name,notnull,unique" json:"name"`
}

type Designation struct {
	bun.BaseModel `bun:"table:designations,alias:des"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name,notnull,unique" json:"name"`
}

type ProviderType struct {
	bun.BaseModel `bun:"table:provider_types,alias:pt"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name,notnull,unique" json:"name"`
}
