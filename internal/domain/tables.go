package domain

var Tables = []interface{}{
	// Members
	&User{},
	&Tool{},
	&UserTool{},
	// Commerce
	&Order{},
	&OrderItem{},
	&CheckoutSession{},
	// Misc
	&Notification{},
	&VaultItem{},
	&ProtocolSignup{},
}
