package domain

// GameLog - журнал игровых сообщений, видимых игроку.
// Только добавление; клиент показывает хвост. Все ожидаемые "отказы"
// (нет предмета под ногами, путь прегражден) попадают сюда, а не в ошибки.
type GameLog struct {
	Entries []string `json:"entries"`
}

// Append дописывает сообщение в журнал.
func (l *GameLog) Append(msg string) {
	l.Entries = append(l.Entries, msg)
}

// Tail возвращает последние n сообщений (или все, если их меньше).
func (l *GameLog) Tail(n int) []string {
	if len(l.Entries) <= n {
		return l.Entries
	}
	return l.Entries[len(l.Entries)-n:]
}
