package command

const (
	MsgInternalError = "Произошла непредвиденная ошибка."
	MsgGuildOnly     = "Эта команда доступна только на сервере."
	MsgCooldown      = "Пожалуйста, подождите %.1f сек. перед повторным использованием команды `%s`."
)
