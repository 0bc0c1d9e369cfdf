package paymentmethod

const (
	Afterpay         Gateway = "afterpay"
	Alipay           Gateway = "alipay"
	AmericanExpress  Gateway = "amex"
	ApplePay         Gateway = "applepay"
	Bancontact       Gateway = "bancontact"
	BankTransfer     Gateway = "banktransfer"
	Belfius          Gateway = "belfius"
	CBC              Gateway = "cbc"
	CreditCard       Gateway = "creditcard"
	DirectDebit      Gateway = "directdebit"
	Dotpay           Gateway = "dotpay"
	EPS              Gateway = "eps"
	Giropay          Gateway = "giropay"
	GooglePay        Gateway = "googlepay"
	Ideal            Gateway = "ideal"
	IdealQR          Gateway = "idealqr"
	In3              Gateway = "in3"
	INGHomePay       Gateway = "inghomepay"
	KBC              Gateway = "kbc"
	Klarna           Gateway = "klarna"
	Maestro          Gateway = "maestro"
	Mastercard       Gateway = "mastercard"
	PayAfterDelivery Gateway = "payafterdelivery"
	PayPal           Gateway = "paypal"
	Paysafecard      Gateway = "paysafecard"
	RequestToPay     Gateway = "requesttopay"
	Santander        Gateway = "santander"
	Sofort           Gateway = "sofort"
	Trustly          Gateway = "trustly"
	Visa             Gateway = "visa"
	WeChatPay        Gateway = "wechatpay"
	Generic          Gateway = "generic"
	Generic2         Gateway = "generic2"
	Generic3         Gateway = "generic3"
	Generic4         Gateway = "generic4"
	Generic5         Gateway = "generic5"
)

const (
	templateIssuers = "multisafepay/issuers"
	templateGender  = "multisafepay/gender"
)

func redirect(id Gateway, name, code, media string) Descriptor {
	return Descriptor{ID: id, Name: name, GatewayCode: code, Media: media, Type: TypeRedirect}
}

func card(id Gateway, name, code, media string) Descriptor {
	d := redirect(id, name, code, media)
	d.Recurring = true
	return d
}

func generic(id Gateway, name string) Descriptor {
	return Descriptor{ID: id, Name: name, Type: TypeRedirect, Generic: true, Media: "generic.png"}
}

// Descriptors returns the built-in payment method table.
func Descriptors() []Descriptor {
	ideal := redirect(Ideal, "iDEAL", "IDEAL", "ideal.png")
	ideal.HasIssuers = true
	ideal.Template = templateIssuers

	in3 := redirect(In3, "in3", "IN3", "in3.png")
	in3.RequiresGender = true
	in3.Template = templateGender

	afterpay := redirect(Afterpay, "Riverty", "AFTERPAY", "afterpay.png")
	afterpay.RequiresGender = true
	afterpay.Template = templateGender

	return []Descriptor{
		afterpay,
		redirect(Alipay, "Alipay", "ALIPAY", "alipay.png"),
		card(AmericanExpress, "American Express", "AMEX", "amex.png"),
		redirect(ApplePay, "Apple Pay", "APPLEPAY", "applepay.png"),
		redirect(Bancontact, "Bancontact", "MISTERCASH", "bancontact.png"),
		redirect(BankTransfer, "Bank transfer", "BANKTRANS", "banktransfer.png"),
		redirect(Belfius, "Belfius", "BELFIUS", "belfius.png"),
		redirect(CBC, "CBC", "CBC", "cbc.png"),
		card(CreditCard, "Credit card", "CREDITCARD", "creditcard.png"),
		redirect(DirectDebit, "SEPA Direct Debit", "DIRDEB", "directdebit.png"),
		redirect(Dotpay, "Dotpay", "DOTPAY", "dotpay.png"),
		redirect(EPS, "EPS", "EPS", "eps.png"),
		redirect(Giropay, "Giropay", "GIROPAY", "giropay.png"),
		redirect(GooglePay, "Google Pay", "GOOGLEPAY", "googlepay.png"),
		ideal,
		redirect(IdealQR, "iDEAL QR", "IDEALQR", "idealqr.png"),
		in3,
		redirect(INGHomePay, "ING Home'Pay", "INGHOME", "inghomepay.png"),
		redirect(KBC, "KBC", "KBC", "kbc.png"),
		redirect(Klarna, "Klarna", "KLARNA", "klarna.png"),
		card(Maestro, "Maestro", "MAESTRO", "maestro.png"),
		card(Mastercard, "Mastercard", "MASTERCARD", "mastercard.png"),
		redirect(PayAfterDelivery, "Pay After Delivery", "PAYAFTER", "payafterdelivery.png"),
		redirect(PayPal, "PayPal", "PAYPAL", "paypal.png"),
		redirect(Paysafecard, "Paysafecard", "PSAFECARD", "paysafecard.png"),
		redirect(RequestToPay, "Request to Pay", "DBRTP", "requesttopay.png"),
		redirect(Santander, "Santander Consumer Finance", "SANTANDER", "santander.png"),
		redirect(Sofort, "Sofort", "DIRECTBANK", "sofort.png"),
		redirect(Trustly, "Trustly", "TRUSTLY", "trustly.png"),
		card(Visa, "Visa", "VISA", "visa.png"),
		redirect(WeChatPay, "WeChat Pay", "WECHAT", "wechatpay.png"),
		generic(Generic, "Generic gateway"),
		generic(Generic2, "Generic gateway 2"),
		generic(Generic3, "Generic gateway 3"),
		generic(Generic4, "Generic gateway 4"),
		generic(Generic5, "Generic gateway 5"),
	}
}
