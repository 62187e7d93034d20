package domain

// Cliente is a customer record owned by a single user.
type Cliente struct {
	ID           int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string  `gorm:"column:nombre;not null" json:"nombre"`
	SocialHandle string  `gorm:"column:tiktok;not null;uniqueIndex:ux_clientes_tiktok" json:"tiktok"`
	Phone        *string `gorm:"column:telefono" json:"telefono"`
	Email        *string `gorm:"column:correo" json:"correo"`
	Status       bool    `gorm:"column:estado;not null" json:"estado"`
	OwnerID      int64   `gorm:"column:id_usuario;not null;index:idx_clientes_id_usuario" json:"id_usuario"`
}

func (Cliente) TableName() string {
	return "clientes"
}
