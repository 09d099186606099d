package bot

// User-facing texts. The dealership serves a Russian-speaking audience, so
// all customer copy is Russian; log output stays English.
const (
	textGreeting = "Добро пожаловать в автосалон A7 Motors! 🚗\n\n" +
		"Здесь вы можете посмотреть каталог автомобилей, подобрать машину по параметрам " +
		"и оставить заявку на покупку."
	textHelp = "Команды:\n" +
		"/start — главное меню\n" +
		"/help — эта справка\n" +
		"/cancel — прервать текущий диалог\n\n" +
		"Каталог, фильтры и заявка доступны через кнопки главного меню."
	textMainMenu      = "Главное меню:"
	textFiltersMenu   = "Подбор по параметрам. Выберите фильтр:"
	textCatalogEmpty  = "Пока нет автомобилей по выбранным условиям. Загляните позже или измените фильтры."
	textCarNotFound   = "Автомобиль не найден. Возможно, его уже продали."
	textSessionLost   = "Сессия устарела. Откройте каталог заново."
	textCancelled     = "Действие отменено."
	textNothingCancel = "Сейчас нет активного диалога."
	textAccessDenied  = "Эта команда доступна только администраторам."

	textAskName        = "Как вас зовут?"
	textAskPhone       = "Укажите номер телефона для связи:"
	textAskPrefs       = "Есть ли пожелания по автомобилю? Напишите их или нажмите «Пропустить»."
	textInquiryDone    = "Спасибо! Заявка принята, менеджер свяжется с вами в ближайшее время. ✅"
	textNameEmpty      = "Имя не может быть пустым. Как вас зовут?"
	textPhoneEmpty     = "Номер не может быть пустым. Укажите телефон:"
	textExpectedText   = "Пожалуйста, отправьте текстовое сообщение."
	textExpectedChoice = "Пожалуйста, выберите вариант кнопкой ниже."
	textExpectedPhoto  = "Пожалуйста, отправьте фотографию."

	textAdminMenu        = "Панель администратора:"
	textAskBrand         = "Введите марку автомобиля:"
	textAskModel         = "Введите модель:"
	textAskYear          = "Введите год выпуска (числом):"
	textAskPrice         = "Введите цену в BYN (числом):"
	textAskBody          = "Выберите тип кузова:"
	textAskEngine        = "Выберите тип двигателя:"
	textAskVolume        = "Введите объём двигателя, например 2.0:"
	textAskTransmission  = "Выберите коробку передач:"
	textAskColor         = "Введите цвет:"
	textAskMileage       = "Введите пробег в км (числом):"
	textAskDescription   = "Введите описание автомобиля:"
	textAskFeatures      = "Перечислите комплектацию через запятую или отправьте /skip:"
	textBadYear          = "Год должен быть числом. Введите год выпуска:"
	textBadPrice         = "Цена должна быть числом. Введите цену в BYN:"
	textBadVolume        = "Объём должен быть числом, например 2.0. Введите объём:"
	textBadMileage       = "Пробег должен быть числом. Введите пробег в км:"
	textCarSaveFailed    = "Не удалось сохранить автомобиль. Попробуйте ещё раз позже."
	textAskCarIDPhotos   = "Введите id автомобиля, к которому добавить фото:"
	textAskCarIDDelete   = "Введите id автомобиля, который нужно удалить:"
	textAskCarIDToggle   = "Введите id автомобиля, чтобы изменить доступность:"
	textBadCarID         = "Id должен быть числом. Попробуйте ещё раз:"
	textSendPhoto        = "Отправьте фотографию автомобиля:"
	textPhotoLimit       = "У автомобиля уже 5 фотографий — это максимум."
	textPhotoSaveFailed  = "Не удалось сохранить фото. Попробуйте ещё раз."
	textCarDeleted       = "Автомобиль удалён вместе с фотографиями."
	textDeleteFailed     = "Не удалось удалить автомобиль."
	textToggleFailed     = "Не удалось изменить доступность."
	textAdminListEmpty   = "Каталог пуст."
	textUnknownAction    = "Неизвестное действие."
	textUnknownMessage   = "Я понимаю только команды и кнопки меню. Нажмите /start."
	textUnexpectedPhoto  = "Сейчас фото не требуется. Нажмите /start для меню."
	textRateLimited      = "Слишком часто! Подождите секунду."
	textMissingFieldsFmt = "Заявка не сохранена: не заполнены поля %s. Начните заново через /admin."
	textPhotoAddedFmt    = "Фото %d/%d сохранено. Отправьте ещё или нажмите «Готово»."
	textCarSavedFmt      = "Автомобиль сохранён, id %d. Теперь можно добавить фото через панель администратора."

	textFoundCountFmt     = "Найдено автомобилей по выбранным условиям: %d."
	textAskCarIDDelPhoto  = "Введите id автомобиля, у которого удалить фото:"
	textNoLocalPhotos     = "У этого автомобиля нет загруженных фото."
	textChoosePhotoDel    = "Выберите фото для удаления:"
	textPhotoDeleted      = "Фото удалено."
	textPhotoDeleteFailed = "Не удалось удалить фото."
)

const (
	btnCatalog   = "🚗 Каталог"
	btnFilters   = "🔍 Подбор по параметрам"
	btnContacts  = "📞 Контакты"
	btnInquiry   = "📝 Оставить заявку"
	btnBack      = "⬅️ Назад"
	btnPrevCar   = "⬅️"
	btnNextCar   = "➡️"
	btnPrevPhoto = "🖼 ⬅️"
	btnNextPhoto = "🖼 ➡️"
	btnInquire   = "📝 Заявка на это авто"
	btnSkip      = "Пропустить"
	btnDone      = "Готово"
	btnCancel    = "❌ Отмена"

	btnFilterBrand   = "Марка"
	btnFilterPrice   = "Цена"
	btnFilterBody    = "Кузов"
	btnFilterEngine  = "Двигатель"
	btnFilterGearbox = "Коробка"
	btnFilterShow    = "✅ Показать"
	btnFilterCount   = "🔢 Сколько в наличии"
	btnFilterReset   = "♻️ Сбросить"
	btnAdminList     = "📋 Список автомобилей"
	btnAdminAdd      = "➕ Добавить автомобиль"
	btnAdminPhotos   = "🖼 Добавить фото"
	btnAdminDelPhoto = "🗑 Удалить фото"
	btnAdminDelete   = "🗑 Удалить автомобиль"
	btnAdminToggle   = "🔄 Доступность"
)
