package slotline

type SideType uint16

const (
	SIDE_LEFT = SideType(iota + 1)
	SIDE_RIGHT
)

func (iotaIdx SideType) String() string {
	return [...]string{"left", "right"}[iotaIdx-1]
}
