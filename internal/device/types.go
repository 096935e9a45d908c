package device

// イベントデバイス制御用の定数
const (
	EVIOCGRAB   = 0x40044590          // デバイスの排他制御用のIOCTL
	DefaultGlob = "/dev/input/event*" // 探索対象のイベントデバイス
)
