package display

// Driver commits a rendered frame to the physical display. The OLED panel
// itself is an external collaborator specified by interface only: no
// concrete SPI/I2C driver ships in this module.
type Driver interface {
	Commit(c *Canvas) error
}

// NullDriver discards every frame. It stands in for the physical display
// driver in environments with no panel attached (tests, development).
type NullDriver struct{}

func (NullDriver) Commit(*Canvas) error { return nil }
