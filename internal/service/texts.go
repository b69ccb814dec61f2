package service

// Fixed notices. Prompt texts live in model.Settings.
const (
	TextOnlyNotice          = "Iltimos, faqat matn yuboring. Boshlash uchun /start yuboring."
	AlreadyRegisteredNotice = "Siz allaqachon ro'yxatdan o'tgansiz. Ma'lumotlarni yangilash uchun /start yuborishingiz mumkin."
	ServerErrorNotice       = "Serverda xatolik yuz berdi. Iltimos, keyinroq yana urinib ko‘ring."

	BroadcastConfirmPrompt = "Bu xabarni barcha foydalanuvchilarga yuboraysizmi?"
	BroadcastButtonsFailed = "Inline tugmalarni yuborishda xatolik yuz berdi."
	BroadcastNoToken       = "Bot token sozlanmagan. Admin broadcast ishlamaydi."
	BroadcastAdminOnly     = "Bu tugma faqat admin uchun moʻljallangan."
	BroadcastNothingStaged = "Saqlangan xabar topilmadi. Qaytadan yuborib ko‘ring."
	BroadcastConfigError   = "Server konfiguratsiyasida xatolik (bot token topilmadi)."
	BroadcastSentReport    = "Xabar %d ta foydalanuvchiga yuborildi."
	BroadcastCancelled     = "Xabar yuborish bekor qilindi."
	BroadcastConfirmLabel  = "Ha, yubor"
	BroadcastCancelLabel   = "Yo‘q, bekor qil"
	CallbackBroadcastYes   = "broadcast_yes"
	CallbackBroadcastNo    = "broadcast_no"
	StartCommand           = "/start"
)

// BroadcastButtons is the two-button confirmation keyboard.
var BroadcastButtons = []Button{
	{Label: BroadcastConfirmLabel, Code: CallbackBroadcastYes},
	{Label: BroadcastCancelLabel, Code: CallbackBroadcastNo},
}
