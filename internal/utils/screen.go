package utils

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// ScreenSize asks the X server for the default screen's size in pixels.
func ScreenSize() (int, int, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return 0, 0, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	return int(screen.WidthInPixels), int(screen.HeightInPixels), nil
}
