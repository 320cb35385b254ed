package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength    = 3
	MaxUsernameLength    = 30
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 100

	MinProjectTitleLength       = 3
	MaxProjectTitleLength       = 200
	MinProjectDescriptionLength = 10
	MaxProjectDescriptionLength = 5000

	MinProposalLength = 10
	MaxProposalLength = 2000

	MinMilestoneTitleLength       = 1
	MaxMilestoneTitleLength       = 200
	MaxMilestoneDescriptionLength = 2000
	MaxMilestonesCount            = 50

	MaxCounterMessageLength  = 2000
	MaxRejectionReasonLength = 2000
	MaxContractTermsLength   = 20000
	MinMessageLength         = 1
	MaxMessageLength         = 5000

	MinAmount       = 0.0
	MaxAmount       = 100000000.0 // 100 миллионов
	MinDeliveryDays = 1
	MaxDeliveryDays = 3650
)

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateAmount проверяет денежную сумму.
func ValidateAmount(amount float64) error {
	if amount <= MinAmount {
		return fmt.Errorf("сумма должна быть положительной")
	}
	if amount > MaxAmount {
		return fmt.Errorf("сумма не может превышать %.0f", MaxAmount)
	}
	return nil
}

// ValidateDeliveryDays проверяет срок выполнения в днях.
func ValidateDeliveryDays(days int) error {
	if days < MinDeliveryDays {
		return fmt.Errorf("срок выполнения должен быть не менее %d дня", MinDeliveryDays)
	}
	if days > MaxDeliveryDays {
		return fmt.Errorf("срок выполнения не может превышать %d дней", MaxDeliveryDays)
	}
	return nil
}

// ValidateProposal проверяет текст предложения фрилансера.
func ValidateProposal(proposal string) error {
	if err := ValidateNonEmpty("текст предложения", proposal); err != nil {
		return err
	}
	return ValidateLength("текст предложения", strings.TrimSpace(proposal), MinProposalLength, MaxProposalLength)
}

// ValidateProjectTitle проверяет заголовок проекта.
func ValidateProjectTitle(title string) error {
	if err := ValidateNonEmpty("заголовок проекта", title); err != nil {
		return err
	}
	return ValidateLength("заголовок проекта", strings.TrimSpace(title), MinProjectTitleLength, MaxProjectTitleLength)
}

// ValidateProjectDescription проверяет описание проекта.
func ValidateProjectDescription(description string) error {
	if err := ValidateNonEmpty("описание проекта", description); err != nil {
		return err
	}
	return ValidateLength("описание проекта", strings.TrimSpace(description), MinProjectDescriptionLength, MaxProjectDescriptionLength)
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры, точку, дефис и подчёркивание")
	}

	return nil
}
