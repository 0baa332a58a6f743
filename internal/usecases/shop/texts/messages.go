package texts

// Общие сообщения
const (
	Welcome = `Привет, %s! 👋

Это магазин цифровых товаров. Здесь можно выбрать товар, оплатить его криптовалютой и получить покупку прямо в чат.

📦 /catalog — каталог товаров
🛒 /cart — корзина
📋 /orders — мои заказы
💎 /balance — бонусные баллы
ℹ️ /help — все команды`

	WelcomeBack = `С возвращением, %s! 👋

📦 /catalog — каталог товаров
🛒 /cart — корзина`

	HelpCommand = `Команды магазина:

📦 /catalog — каталог товаров
🛒 /cart — корзина
📋 /orders — мои заказы
💎 /balance — бонусные баллы и история
🎟 /coupon — проверить промокод
🤝 /ref — реферальная ссылка
🆘 /support — написать в поддержку
❌ /cancel — отменить текущее действие`

	UnknownCommand = "Не знаю команду /%s 🤔\nСписок команд: /help"

	NothingToCancel = "Сейчас нечего отменять 🙂"
	ActionCancelled = "Действие отменено ✅"

	SomethingWentWrong = "Что-то пошло не так, попробуйте ещё раз позже 😔"
)

// Каталог и карточка товара
const (
	CatalogEmpty  = "Каталог пока пуст 📭\nЗагляните позже!"
	CatalogHeader = "📦 Каталог товаров\n\nВыберите товар:"

	ProductOutOfStock = "Товар закончился 😔"
	ProductInactive   = "Товар недоступен 😔"
)

// Корзина
const (
	CartEmpty = "Корзина пуста 🛒\nДобавьте что-нибудь из каталога: /catalog"

	CartItemAdded   = "Добавлено в корзину ✅"
	CartItemRemoved = "Убрано из корзины ✅"
	CartCleared     = "Корзина очищена 🧹"
)

// Оформление заказа
const (
	CheckoutAskCoupon = `Есть промокод? 🎟

Отправьте код сообщением или нажмите «Пропустить».`

	CheckoutCouponInvalid = "Промокод не подошёл 😕\n\nОтправьте другой код или нажмите «Пропустить»."

	CheckoutAskPoints = `💎 На балансе %s баллов.

К этому заказу можно списать до %s. Отправьте число баллов или выберите вариант ниже.`

	CheckoutPointsInvalid = "Столько списать нельзя, максимум %s 💎\n\nОтправьте другое число или нажмите «Не списывать»."
	CheckoutPointsNaN     = "Нужно число баллов, например 50 🙂"

	CheckoutExpired = "Оформление прервано, начните заново из корзины 🛒"
	CheckoutFailed  = "Не получилось оформить заказ 😕\nВозможно, товар закончился или условия купона изменились."

	InvoiceFailed = "Заказ №%d оформлен, но счёт на оплату выставить не удалось 😔\nОткройте заказ в /orders чуть позже, счёт выставится заново."

	OrderCreated = `🧾 Заказ №%d оформлен!

%s
Итого к оплате: %s %s
Оплатить до: %s`

	OrderCancelledByUser = "Заказ №%d отменён ❌"
	OrderPaymentPending  = "Оплата пока не найдена. Если вы уже оплатили, подождите минуту и проверьте ещё раз 🙂"
	OrderAlreadyPaid     = "Заказ уже оплачен ✅"
	OrderPaymentExpired  = "Срок оплаты заказа №%d истёк ⌛\nМожно выставить новый счёт."
	OrderPaid            = "Оплата получена! 🎉"

	OrderCancelNotAllowed = "Этот заказ уже нельзя отменить 🤷"
	ReopenFailed          = "Не получилось выставить новый счёт 😕\nВозможно, товар закончился или баллов уже не хватает."
)

// Мои заказы
const (
	OrdersEmpty  = "Заказов пока нет 📭\nВыберите что-нибудь в каталоге: /catalog"
	OrdersHeader = "📋 Ваши заказы:\n\n"
)

// Баллы и рефералы
const (
	BalanceHeader = "💎 Баланс: %s баллов\n"

	ReferralInfo = `🤝 Приглашайте друзей и получайте баллы!

Ваша ссылка:
%s

Переходы: %d
Регистраций: %d
Оплативших: %d

За первый оплаченный заказ приглашённого вы получите %s баллов 💎`
)

// Купоны
const (
	CouponUsage = "Отправьте код вместе с командой, например:\n/coupon SALE10\n\nПромокод применяется при оформлении заказа 🎟"
	CouponValid = `Промокод %s действует ✅

Скидка: %s
Применить его можно при оформлении заказа.`
)

// Поддержка
const (
	SupportPrompt = `🆘 Опишите проблему одним сообщением — мы ответим прямо в этот чат.

Выйти из диалога: /cancel`

	SupportReceived = "Сообщение передано в поддержку ✅\nОтвет придёт в этот чат."
)

// Админка
const (
	AdminOnly = "Команда доступна только администратору 🙅"

	AdminHelp = `Админ-команды:

📦 /stock — товары и остатки
   /stock <id> on|off — вкл/выкл товар
   /stock <id> <кол-во> — задать остаток
🗂 /files [префикс] — ключи файлов в хранилище
📋 /orders_admin — последние заказы
🎟 /coupon_new <код> <percent|fixed> <размер> [макс. применений] — создать купон
   /coupons — список купонов
   /coupon_off <код> — выключить купон
💎 /points <telegram id> <дельта> [заметка] — скорректировать баллы
🆘 /tickets — открытые обращения
   /tickets close <id> — закрыть обращение
💬 /reply <id> <текст> — ответить на обращение
📣 /broadcast <текст> — рассылка всем
⚙️ /settings — настройки магазина
   /settings <ключ> <значение> — изменить`

	AdminNoOpenTickets = "Открытых обращений нет ✅"
	AdminBroadcastUsage = "Использование: /broadcast <текст рассылки>"
	AdminReplyUsage     = "Использование: /reply <id обращения> <текст ответа>"
	AdminCouponUsage    = "Использование: /coupon_new <код> <percent|fixed> <размер> [макс. применений]"
)
