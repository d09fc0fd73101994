package database

import (
	"context"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/common/config"
)

// DB implements the Database interface on top of gorm
type DB struct {
	logger *zap.Logger
	db     *gorm.DB
}

var _ Database = (*DB)(nil)

// New opens a database connection based on configuration and migrates
// the schema.
func New(logger *zap.Logger, cfg *config.DatabaseConfig) (*DB, error) {
	logger = logger.Named("apiserver.database")

	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(cfg.GetDSN())
	case "mysql":
		dialector = mysql.Open(cfg.GetDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.GetDSN())
	default:
		return nil, ErrInvalidDatabaseType
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := gormDB.AutoMigrate(
		&User{},
		&City{},
		&MenuType{},
		&Menu{},
		&Announcement{},
		&AuditEntry{},
	); err != nil {
		return nil, err
	}

	return &DB{logger: logger, db: gormDB}, nil
}

// Close closes the underlying connection.
func (s *DB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn inside a transaction carried by the context.
func (s *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func (s *DB) conn(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, s.db)
}

func (s *DB) CreateUser(ctx context.Context, user *User) error {
	return s.conn(ctx).Create(user).Error
}

func (s *DB) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.conn(ctx).Preload("Cities").Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DB) GetUserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	var user User
	err := s.conn(ctx).Preload("Cities").
		Where("email = ? OR cpf = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DB) GetUserByResetToken(ctx context.Context, token string) (*User, error) {
	var user User
	err := s.conn(ctx).Preload("Cities").
		Where("reset_token = ?", token).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DB) FindConflictingUser(ctx context.Context, email, cpf, excludeID string) (*User, error) {
	var user User
	q := s.conn(ctx).Where("email = ? OR cpf = ?", email, cpf)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DB) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.conn(ctx).Preload("Cities").Order("name asc").Find(&users).Error
	return users, err
}

func (s *DB) UpdateUser(ctx context.Context, user *User) error {
	return s.conn(ctx).Omit("Cities").Save(user).Error
}

func (s *DB) ReplaceUserCities(ctx context.Context, userID string, cityIDs []string) error {
	cities := make([]City, len(cityIDs))
	for i, id := range cityIDs {
		cities[i] = City{ID: id}
	}
	return s.conn(ctx).Model(&User{ID: userID}).Association("Cities").Replace(cities)
}

func (s *DB) DeleteUser(ctx context.Context, id string) error {
	return s.conn(ctx).Select(clause.Associations).Delete(&User{ID: id}).Error
}

func (s *DB) CreateCity(ctx context.Context, city *City) error {
	return s.conn(ctx).Create(city).Error
}

func (s *DB) GetCityByID(ctx context.Context, id string) (*City, error) {
	var city City
	err := s.conn(ctx).Where("id = ?", id).First(&city).Error
	if err != nil {
		return nil, err
	}
	return &city, nil
}

func (s *DB) ListCities(ctx context.Context, scope Scope) ([]*City, error) {
	// An empty scoped assignment set matches nothing.
	if !scope.All && len(scope.CityIDs) == 0 {
		return []*City{}, nil
	}
	q := s.conn(ctx).Order("name asc")
	if !scope.All {
		q = q.Where("id IN ?", scope.CityIDs)
	}
	var cities []*City
	err := q.Find(&cities).Error
	return cities, err
}

func (s *DB) UpdateCity(ctx context.Context, city *City) error {
	return s.conn(ctx).Save(city).Error
}

func (s *DB) DeleteCity(ctx context.Context, id string) error {
	return s.conn(ctx).Delete(&City{ID: id}).Error
}

func (s *DB) CreateMenuType(ctx context.Context, mt *MenuType) error {
	return s.conn(ctx).Create(mt).Error
}

func (s *DB) GetMenuTypeByID(ctx context.Context, id string) (*MenuType, error) {
	var mt MenuType
	err := s.conn(ctx).Where("id = ?", id).First(&mt).Error
	if err != nil {
		return nil, err
	}
	return &mt, nil
}

func (s *DB) ListMenuTypes(ctx context.Context) ([]*MenuType, error) {
	var types []*MenuType
	err := s.conn(ctx).Order("name asc").Find(&types).Error
	return types, err
}

func (s *DB) UpdateMenuType(ctx context.Context, mt *MenuType) error {
	return s.conn(ctx).Save(mt).Error
}

func (s *DB) DeleteMenuType(ctx context.Context, id string) error {
	return s.conn(ctx).Delete(&MenuType{ID: id}).Error
}

func (s *DB) CreateMenu(ctx context.Context, menu *Menu) error {
	return s.conn(ctx).Create(menu).Error
}

func (s *DB) GetMenuByID(ctx context.Context, id string) (*Menu, error) {
	var menu Menu
	err := s.conn(ctx).Preload("City").Preload("Type").
		Where("id = ?", id).First(&menu).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (s *DB) ListMenus(ctx context.Context, scope Scope) ([]*Menu, error) {
	if !scope.All && len(scope.CityIDs) == 0 {
		return []*Menu{}, nil
	}
	q := s.conn(ctx).Preload("City").Preload("Type").Order("item asc")
	if !scope.All {
		q = q.Where("city_id IN ?", scope.CityIDs)
	}
	var menus []*Menu
	err := q.Find(&menus).Error
	return menus, err
}

func (s *DB) UpdateMenu(ctx context.Context, menu *Menu) error {
	return s.conn(ctx).Omit("City", "Type").Save(menu).Error
}

func (s *DB) DeleteMenu(ctx context.Context, id string) error {
	return s.conn(ctx).Delete(&Menu{ID: id}).Error
}

func (s *DB) CreateAnnouncement(ctx context.Context, a *Announcement) error {
	return s.conn(ctx).Create(a).Error
}

func (s *DB) GetAnnouncementByID(ctx context.Context, id string) (*Announcement, error) {
	var a Announcement
	err := s.conn(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *DB) ListAnnouncements(ctx context.Context, scope Scope) ([]*Announcement, error) {
	q := s.conn(ctx).Order("created_at desc")
	if !scope.All {
		if len(scope.CityIDs) > 0 {
			q = q.Where("city_id IN ? OR is_public = ?", scope.CityIDs, true)
		} else {
			// The creator fallback only applies when the caller carries
			// no city context at all.
			q = q.Where("is_public = ? OR created_by = ?", true, scope.UserID)
		}
	}
	var items []*Announcement
	err := q.Find(&items).Error
	return items, err
}

func (s *DB) UpdateAnnouncement(ctx context.Context, a *Announcement) error {
	return s.conn(ctx).Save(a).Error
}

func (s *DB) DeleteAnnouncement(ctx context.Context, id string) error {
	return s.conn(ctx).Delete(&Announcement{ID: id}).Error
}

func (s *DB) InsertAuditEntry(ctx context.Context, entry *AuditEntry) error {
	return s.conn(ctx).Create(entry).Error
}

func (s *DB) QueryAuditEntries(ctx context.Context, filter AuditFilter) ([]*AuditEntry, int64, error) {
	q := s.conn(ctx).Model(&AuditEntry{})

	if filter.From != nil {
		q = q.Where("timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("timestamp <= ?", *filter.To)
	}
	if filter.ActorName != "" {
		q = q.Where("LOWER(actor_name) LIKE ?", "%"+strings.ToLower(filter.ActorName)+"%")
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.Module != "" {
		q = q.Where("module = ?", filter.Module)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	var entries []*AuditEntry
	err := q.Order("timestamp desc").Order("id desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	return entries, total, err
}

func (s *DB) DeleteListingEntries(ctx context.Context) (int64, error) {
	result := s.conn(ctx).Where("action = ?", cnst.ActionList).Delete(&AuditEntry{})
	return result.RowsAffected, result.Error
}
