package music

import (
	"errors"

	"tunebot/internal/music/queue"
)

const (
	TitleNowPlaying = "Сейчас играет"
	TitleQueued     = "Добавлено в очередь"

	MsgPlaybackError = "Произошла ошибка при воспроизведении песни."
	MsgSkipped       = "⏭️ Пропущено: **%s**"
	MsgStopped       = "⏹️ Воспроизведение остановлено, очередь очищена."
	MsgVolume        = "🔊 Текущая громкость: **%d**"
	MsgVolumeSet     = "🔊 Громкость установлена на **%d**."
	MsgQueueEmpty    = "Очередь пуста."
	MsgHistoryEmpty  = "Ещё ничего не играло."
	MsgVolumeUsage   = "Укажите громкость числом от 0 до 100."
)

var errorMessages = []struct {
	err error
	msg string
}{
	{queue.ErrMissingArgument, "Пожалуйста, укажите название песни или URL для воспроизведения."},
	{queue.ErrNotInVoice, "Вы должны находиться в голосовом канале для использования этой команды."},
	{queue.ErrNoPermission, "У меня нет прав для подключения или воспроизведения музыки в этом канале."},
	{queue.ErrNotFound, "Не удалось найти видео по вашему запросу."},
	{queue.ErrConnectFailed, "Произошла ошибка при подключении к голосовому каналу."},
	{queue.ErrStreamAcquisition, MsgPlaybackError},
	{queue.ErrPlaybackFailed, MsgPlaybackError},
	{queue.ErrUnhandled, "Произошла ошибка при поиске видео."},
	{queue.ErrNoQueue, "Сейчас ничего не играет."},
	{queue.ErrInvalidVolume, MsgVolumeUsage},
}

// ErrorMessage turns a queue error into the reply shown in chat.
func ErrorMessage(err error) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Произошла непредвиденная ошибка."
}

// expected reports whether err is a user mistake rather than a failure.
func expected(err error) bool {
	for _, e := range []error{
		queue.ErrMissingArgument,
		queue.ErrNotInVoice,
		queue.ErrNoPermission,
		queue.ErrNotFound,
		queue.ErrNoQueue,
		queue.ErrInvalidVolume,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
